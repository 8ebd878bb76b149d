package models

import "time"

// APIInfoResponse describes the metadata returned by GET /api.
type APIInfoResponse struct {
	Name      string            `json:"name" example:"Content Portal API"`
	Version   string            `json:"version" example:"1.0.0"`
	Endpoints map[string]string `json:"endpoints"`
}

// ErrorResponse represents a generic error payload used across endpoints.
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid request"`
	Details string `json:"details,omitempty" example:"Missing 'name' field"`
}

// MessageResponse represents a simple success payload with contextual message.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Operation completed successfully"`
}

// CreateEditorRequest is the payload for registering a new editor.
type CreateEditorRequest struct {
	Name        string `json:"name" example:"Jordan"`
	Type        string `json:"type" example:"video"`
	Description string `json:"description" example:"Shorts editor"`
}

// CreateUploadRequest records the metadata of a completed media upload.
type CreateUploadRequest struct {
	EditorID     string  `json:"editor_id" example:"7b8e1f0a-4c2d-4c6e-9a3f-2f1f4a5b6c7d"`
	FileName     string  `json:"file_name" example:"clip.mp4"`
	Caption      string  `json:"caption" example:"Monday recap"`
	MediaURL     string  `json:"media_url" example:"https://cdn.example.com/uploads/clip.mp4"`
	MediaType    string  `json:"media_type" example:"video"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}

// UploadPolicyResponse describes the limits and destination key a client
// must honor before pushing bytes to blob storage.
type UploadPolicyResponse struct {
	Key           string   `json:"key" example:"uploads/7b8e1f0a/1718000000000-clip.mp4"`
	PublicURL     string   `json:"public_url" example:"https://cdn.example.com/uploads/7b8e1f0a/1718000000000-clip.mp4"`
	MaxSize       int64    `json:"max_size" example:"5368709120"`
	AllowedTypes  []string `json:"allowed_types"`
	MediaCategory string   `json:"media_category" example:"video"`
}

// StoreResultResponse is the outcome of a server-side media ingest.
type StoreResultResponse struct {
	Success bool   `json:"success" example:"true"`
	URL     string `json:"url" example:"https://cdn.example.com/uploads/7b8e1f0a/1718000000000-clip.mp4"`
}

// SecretLinkResponse resolves a secret link to its editor and their
// current uploads.
type SecretLinkResponse struct {
	Editor  *Editor   `json:"editor"`
	Uploads []*Upload `json:"uploads"`
}

// VerifyAdminRequest carries the admin password for verification.
type VerifyAdminRequest struct {
	Password string `json:"password" example:"admin123"`
}

// DailyCount is one day's upload totals for the stats dashboard.
type DailyCount struct {
	Date   string `json:"date" example:"2026-08-21"`
	Day    string `json:"day" example:"Friday"`
	Videos int    `json:"videos" example:"4"`
	Images int    `json:"images" example:"9"`
	Total  int    `json:"total" example:"13"`
}

// StatsResponse aggregates portal-wide content counters.
type StatsResponse struct {
	TotalReels  int          `json:"total_reels" example:"120"`
	TotalImages int          `json:"total_images" example:"340"`
	Daily       []DailyCount `json:"daily"`
	Timestamp   int64        `json:"timestamp" example:"1700000000"`
}

// ScheduleItemRequest is one content item submitted for scheduled publishing.
type ScheduleItemRequest struct {
	UploadID    string `json:"upload_id,omitempty" example:"9f0a1b2c-3d4e-5f60-7182-93a4b5c6d7e8"`
	FileName    string `json:"file_name" example:"clip.mp4"`
	MediaURL    string `json:"media_url" example:"https://cdn.example.com/uploads/clip.mp4"`
	Description string `json:"description" example:"Monday recap"`
	Time        string `json:"time,omitempty" example:"14:30"`
	Selected    bool   `json:"selected" example:"true"`
}

// ScheduleRequest is the batch of items the administrator submits for
// scheduling.
type ScheduleRequest struct {
	Items []ScheduleItemRequest `json:"items"`
}

// ScheduleItemResult is the per-item outcome of a schedule dispatch.
type ScheduleItemResult struct {
	FileName    string `json:"file_name" example:"clip.mp4"`
	MediaType   string `json:"media_type" example:"video"`
	ScheduledAt int64  `json:"scheduled_at" example:"1718064600"`
	Success     bool   `json:"success" example:"true"`
	Response    any    `json:"response,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ScheduleResponse collects the per-item dispatch results.
type ScheduleResponse struct {
	Scheduled int                  `json:"scheduled" example:"5"`
	Failed    int                  `json:"failed" example:"1"`
	Results   []ScheduleItemResult `json:"results"`
}

// PreviewSlotItem pairs an item with its computed default slot.
type PreviewSlotItem struct {
	FileName  string `json:"file_name" example:"clip.mp4"`
	MediaType string `json:"media_type" example:"video"`
	Time      string `json:"time" example:"02:00"`
}

// PreviewSlotsResponse is the computed slot assignment for a set of items.
type PreviewSlotsResponse struct {
	ReferenceDate string            `json:"reference_date" example:"2026-08-29"`
	Items         []PreviewSlotItem `json:"items"`
}

// DeleteArchiveRequest selects archive entries for bulk deletion.
type DeleteArchiveRequest struct {
	IDs []int64 `json:"ids" example:"3,5,8"`
}

// NetworkDiagnosticsResponse is the snapshot returned by the network
// quality endpoint.
type NetworkDiagnosticsResponse struct {
	Bandwidth         float64 `json:"bandwidth" example:"5242880"`
	LatencyMs         float64 `json:"latency_ms" example:"120"`
	ConnectionType    string  `json:"connection_type" example:"4g"`
	IsSlowConnection  bool    `json:"is_slow_connection" example:"false"`
	ConnectionQuality string  `json:"connection_quality" example:"fair"`
	EstimatedSeconds  int64   `json:"estimated_seconds,omitempty" example:"14"`
}

// HealthResponse captures the payload returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp int64  `json:"timestamp" example:"1700000000"`
	Database  string `json:"database" example:"ok"`
	Storage   string `json:"storage" example:"ok"`
}

// StorageStats summarises the state of the blob storage subsystem.
type StorageStats struct {
	Enabled          bool      `json:"enabled" example:"true"`
	Backend          string    `json:"backend" example:"minio"`
	TotalStores      int64     `json:"total_stores" example:"240"`
	SuccessfulStores int64     `json:"successful_stores" example:"236"`
	FailedStores     int64     `json:"failed_stores" example:"4"`
	TotalBytes       int64     `json:"total_bytes" example:"73400320"`
	SuccessRate      float64   `json:"success_rate" example:"98.33"`
	AvgStoreTime     string    `json:"avg_store_time" example:"1.2s"`
	LastStore        time.Time `json:"last_store" example:"2026-08-21T12:00:00Z"`
}
