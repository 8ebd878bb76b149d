package services

import (
	"testing"
)

func TestDetectWithConnectionInfo(t *testing.T) {
	info := &ConnectionInfo{
		EffectiveType: "4g",
		DownlinkMbps:  2.5,
		RTTMs:         80,
	}
	estimator := NewNetworkEstimator(func() *ConnectionInfo { return info }, "wifi")

	diag := estimator.Detect()

	if want := 2.5 * mbpsEquivalent; diag.Bandwidth != want {
		t.Errorf("Bandwidth = %f, want %f", diag.Bandwidth, want)
	}
	if diag.LatencyMs != 80 {
		t.Errorf("LatencyMs = %f, want 80", diag.LatencyMs)
	}
	if diag.ConnectionType != "4g" {
		t.Errorf("ConnectionType = %q, want %q", diag.ConnectionType, "4g")
	}
	if diag.IsSlowConnection {
		t.Error("IsSlowConnection = true, want false")
	}
	if diag.ConnectionQuality != QualityFair {
		t.Errorf("ConnectionQuality = %q, want %q", diag.ConnectionQuality, QualityFair)
	}
}

func TestDetectFallback(t *testing.T) {
	tests := []struct {
		name          string
		fallbackType  string
		wantBandwidth float64
		wantType      string
		wantSlow      bool
		wantQuality   string
	}{
		{
			name:          "4g",
			fallbackType:  "4g",
			wantBandwidth: 10 * mbpsEquivalent,
			wantType:      "4g",
			wantQuality:   QualityGood,
		},
		{
			name:          "3g is exactly the slow threshold",
			fallbackType:  "3g",
			wantBandwidth: 1 * mbpsEquivalent,
			wantType:      "3g",
			wantSlow:      false,
			wantQuality:   QualityPoor,
		},
		{
			name:          "2g is slow",
			fallbackType:  "2g",
			wantBandwidth: 0.1 * mbpsEquivalent,
			wantType:      "2g",
			wantSlow:      true,
			wantQuality:   QualityPoor,
		},
		{
			name:          "wifi",
			fallbackType:  "wifi",
			wantBandwidth: 50 * mbpsEquivalent,
			wantType:      "wifi",
			wantQuality:   QualityExcellent,
		},
		{
			name:          "case insensitive label",
			fallbackType:  "WiFi",
			wantBandwidth: 50 * mbpsEquivalent,
			wantType:      "wifi",
			wantQuality:   QualityExcellent,
		},
		{
			name:          "unknown label uses default",
			fallbackType:  "satellite",
			wantBandwidth: defaultBandwidth,
			wantType:      "satellite",
			wantQuality:   QualityFair,
		},
		{
			name:          "empty label",
			fallbackType:  "",
			wantBandwidth: defaultBandwidth,
			wantType:      "unknown",
			wantQuality:   QualityFair,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diag := NewNetworkEstimator(nil, tt.fallbackType).Detect()

			if diag.Bandwidth != tt.wantBandwidth {
				t.Errorf("Bandwidth = %f, want %f", diag.Bandwidth, tt.wantBandwidth)
			}
			if diag.ConnectionType != tt.wantType {
				t.Errorf("ConnectionType = %q, want %q", diag.ConnectionType, tt.wantType)
			}
			if diag.IsSlowConnection != tt.wantSlow {
				t.Errorf("IsSlowConnection = %t, want %t", diag.IsSlowConnection, tt.wantSlow)
			}
			if diag.ConnectionQuality != tt.wantQuality {
				t.Errorf("ConnectionQuality = %q, want %q", diag.ConnectionQuality, tt.wantQuality)
			}
		})
	}
}

func TestQualityTier(t *testing.T) {
	tests := []struct {
		name      string
		bandwidth float64
		want      string
	}{
		{"above 10Mbps is excellent", 10.5 * mbpsEquivalent, QualityExcellent},
		{"exactly 10Mbps is good", 10 * mbpsEquivalent, QualityGood},
		{"above 5Mbps is good", 6 * mbpsEquivalent, QualityGood},
		{"exactly 5Mbps is fair", 5 * mbpsEquivalent, QualityFair},
		{"above 1Mbps is fair", 2 * mbpsEquivalent, QualityFair},
		{"exactly 1Mbps is poor", 1 * mbpsEquivalent, QualityPoor},
		{"zero is poor", 0, QualityPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := qualityTier(tt.bandwidth); got != tt.want {
				t.Errorf("qualityTier(%f) = %q, want %q", tt.bandwidth, got, tt.want)
			}
		})
	}
}

func TestEstimateUploadTime(t *testing.T) {
	tests := []struct {
		name     string
		fileSize int64
		diag     NetworkDiagnostics
		want     int64
	}{
		{
			name:     "exact division",
			fileSize: 10 * mbpsEquivalent,
			diag:     NetworkDiagnostics{Bandwidth: 5 * mbpsEquivalent},
			want:     2,
		},
		{
			name:     "rounds up",
			fileSize: 10*mbpsEquivalent + 1,
			diag:     NetworkDiagnostics{Bandwidth: 5 * mbpsEquivalent},
			want:     3,
		},
		{
			name:     "zero bandwidth returns zero",
			fileSize: 100 * mbpsEquivalent,
			diag:     NetworkDiagnostics{Bandwidth: 0},
			want:     0,
		},
		{
			name:     "zero size",
			fileSize: 0,
			diag:     NetworkDiagnostics{Bandwidth: 5 * mbpsEquivalent},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateUploadTime(tt.fileSize, tt.diag); got != tt.want {
				t.Errorf("EstimateUploadTime(%d) = %d, want %d", tt.fileSize, got, tt.want)
			}
		})
	}
}
