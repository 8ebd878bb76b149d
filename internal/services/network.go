package services

import (
	"fmt"
	"math"
	"strings"
)

// Bandwidth constants in bytes per second. Downlink figures declared in
// Mbps are converted with a flat *1MiB factor; clients depend on this
// exact constant, do not change it to a bits-per-second conversion.
const (
	mbpsEquivalent = 1024 * 1024

	// SlowConnectionThreshold is the bandwidth below which a connection
	// is flagged as slow.
	SlowConnectionThreshold = 1 * mbpsEquivalent
)

// Connection quality tiers.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityPoor      = "poor"
)

// ConnectionInfo is connection metadata reported by the execution
// context (a client's network information, when forwarded).
type ConnectionInfo struct {
	EffectiveType string  // e.g. "4g", "wifi"
	DownlinkMbps  float64 // declared downlink in Mbps
	RTTMs         float64 // round-trip estimate in milliseconds
}

// NetworkDiagnostics is an immutable snapshot of estimated network
// conditions, computed fresh on demand.
type NetworkDiagnostics struct {
	Bandwidth         float64 `json:"bandwidth"` // bytes/sec
	LatencyMs         float64 `json:"latency_ms"`
	ConnectionType    string  `json:"connection_type"`
	IsSlowConnection  bool    `json:"is_slow_connection"`
	ConnectionQuality string  `json:"connection_quality"`
}

// fallbackBandwidth maps coarse connection-type labels to bandwidth
// estimates used when no connection metadata is available.
var fallbackBandwidth = map[string]float64{
	"4g":   10 * mbpsEquivalent,
	"3g":   1 * mbpsEquivalent,
	"2g":   0.1 * mbpsEquivalent,
	"wifi": 50 * mbpsEquivalent,
}

const defaultBandwidth = 5 * mbpsEquivalent

// NetworkEstimator produces best-effort network quality snapshots. The
// metadata source is injectable so transports other than the HTTP
// client hints can feed it.
type NetworkEstimator struct {
	source       func() *ConnectionInfo
	fallbackType string
}

// NewNetworkEstimator creates an estimator. source may be nil; it is
// consulted on every Detect call and may return nil when no metadata
// is available. fallbackType selects the bandwidth table entry used
// without metadata.
func NewNetworkEstimator(source func() *ConnectionInfo, fallbackType string) *NetworkEstimator {
	return &NetworkEstimator{
		source:       source,
		fallbackType: fallbackType,
	}
}

// Detect computes a fresh diagnostics snapshot. It never fails; the
// result is always a best-effort estimate.
func (e *NetworkEstimator) Detect() NetworkDiagnostics {
	var info *ConnectionInfo
	if e.source != nil {
		info = e.source()
	}

	if info != nil {
		bandwidth := info.DownlinkMbps * mbpsEquivalent
		return NetworkDiagnostics{
			Bandwidth:         bandwidth,
			LatencyMs:         info.RTTMs,
			ConnectionType:    info.EffectiveType,
			IsSlowConnection:  bandwidth < SlowConnectionThreshold,
			ConnectionQuality: qualityTier(bandwidth),
		}
	}

	connType := strings.ToLower(e.fallbackType)
	bandwidth, ok := fallbackBandwidth[connType]
	if !ok {
		bandwidth = defaultBandwidth
	}
	if connType == "" {
		connType = "unknown"
	}

	return NetworkDiagnostics{
		Bandwidth:         bandwidth,
		LatencyMs:         0,
		ConnectionType:    connType,
		IsSlowConnection:  bandwidth < SlowConnectionThreshold,
		ConnectionQuality: qualityTier(bandwidth),
	}
}

// qualityTier buckets a bandwidth estimate. Boundaries are strictly
// greater-than: exactly 5 Mbps-equivalent is fair, not good.
func qualityTier(bandwidth float64) string {
	switch {
	case bandwidth > 10*mbpsEquivalent:
		return QualityExcellent
	case bandwidth > 5*mbpsEquivalent:
		return QualityGood
	case bandwidth > 1*mbpsEquivalent:
		return QualityFair
	default:
		return QualityPoor
	}
}

// EstimateUploadTime returns the estimated transfer duration in whole
// seconds for a file of the given size, rounding up. Returns 0 when
// the bandwidth estimate is zero.
func EstimateUploadTime(fileSize int64, diag NetworkDiagnostics) int64 {
	if diag.Bandwidth == 0 {
		return 0
	}
	return int64(math.Ceil(float64(fileSize) / diag.Bandwidth))
}

// FormatDiagnostics renders a snapshot for log lines.
func FormatDiagnostics(diag NetworkDiagnostics) string {
	return fmt.Sprintf("type=%s bandwidth=%.0fB/s latency=%.0fms quality=%s slow=%t",
		diag.ConnectionType, diag.Bandwidth, diag.LatencyMs, diag.ConnectionQuality, diag.IsSlowConnection)
}
