package models

import (
	"time"
)

// Editor types.
const (
	EditorTypeVideo   = "video"
	EditorTypeGraphic = "graphic"
)

// Media types.
const (
	MediaTypeVideo = "video"
	MediaTypeImage = "image"
)

// Archive reasons.
const (
	ArchiveReasonDailyReset = "daily_reset"
	ArchiveReasonPurgeOld   = "purge_old"
	ArchiveReasonManual     = "manual"
)

// Editor is a registered uploader (video editor or graphic designer)
// identified by a secret link.
type Editor struct {
	ID          string    `json:"id" example:"7b8e1f0a-4c2d-4c6e-9a3f-2f1f4a5b6c7d"`
	Name        string    `json:"name" example:"Jordan"`
	Type        string    `json:"type" example:"video"`
	Description string    `json:"description" example:"Shorts editor"`
	SecretLink  string    `json:"secret_link" example:"video-k3x9q2-1718000000000"`
	CreatedAt   time.Time `json:"created_at"`
}

// Upload is one media file plus description and metadata associated
// with an editor.
type Upload struct {
	ID           string    `json:"id" example:"9f0a1b2c-3d4e-5f60-7182-93a4b5c6d7e8"`
	EditorID     string    `json:"editor_id" example:"7b8e1f0a-4c2d-4c6e-9a3f-2f1f4a5b6c7d"`
	FileName     string    `json:"file_name" example:"clip.mp4"`
	Caption      string    `json:"caption" example:"Monday recap"`
	MediaURL     string    `json:"media_url" example:"https://cdn.example.com/uploads/clip.mp4"`
	MediaType    string    `json:"media_type" example:"video"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty" example:"https://cdn.example.com/thumbnails/clip.jpg"`
	CreatedAt    time.Time `json:"created_at"`
}

// UploadWithEditor joins an upload with its editor's name and type for
// the admin review surface.
type UploadWithEditor struct {
	Upload
	EditorName string `json:"editor_name" example:"Jordan"`
	EditorType string `json:"editor_type" example:"video"`
}

// ArchiveEntry is a snapshot of an upload moved out of the active table,
// tagged with a reason.
type ArchiveEntry struct {
	ID            int64     `json:"id" example:"42"`
	EditorID      string    `json:"editor_id" example:"7b8e1f0a-4c2d-4c6e-9a3f-2f1f4a5b6c7d"`
	FileName      string    `json:"file_name" example:"clip.mp4"`
	Caption       string    `json:"caption" example:"Monday recap"`
	MediaURL      string    `json:"media_url" example:"https://cdn.example.com/uploads/clip.mp4"`
	MediaType     string    `json:"media_type" example:"video"`
	CreatedAt     time.Time `json:"created_at"`
	ArchiveReason string    `json:"archive_reason" example:"daily_reset"`
	ArchivedAt    time.Time `json:"archived_at"`
}

// ArchiveEntryWithEditor joins an archive entry with its editor's
// name and type.
type ArchiveEntryWithEditor struct {
	ArchiveEntry
	EditorName string `json:"editor_name" example:"Jordan"`
	EditorType string `json:"editor_type" example:"video"`
}

// ErrorLogEntry is an append-only record of a pipeline failure or
// retry event.
type ErrorLogEntry struct {
	ID           int64          `json:"id" example:"17"`
	ErrorType    string         `json:"error_type" example:"UPLOAD_RETRY"`
	ErrorMessage string         `json:"error_message" example:"failed to upload file: connection reset"`
	ErrorStack   *string        `json:"error_stack,omitempty"`
	FileName     *string        `json:"file_name,omitempty" example:"clip.mp4"`
	FileSize     *int64         `json:"file_size,omitempty" example:"73400320"`
	EditorID     *string        `json:"editor_id,omitempty"`
	RequestID    string         `json:"request_id" example:"1718000000000-x4k2p9"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
