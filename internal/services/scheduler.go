package services

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"content-portal-api/internal/models"
)

// Fixed daily slot tables, in assignment order.
var (
	VideoSlots = []string{"00:00", "02:00", "04:00", "06:00"}
	ImageSlots = []string{"00:30", "01:00", "01:30", "02:30", "03:00", "03:30", "04:30", "05:00", "05:30", "06:30"}
)

// Overflow fallback hour bases for items beyond the slot tables. The
// resulting hour can exceed 23; the timestamp normalizes into the
// following day.
const (
	videoOverflowBase = 12
	imageOverflowBase = 18
)

// Classifier infers a media type from an item's URL and filename.
type Classifier func(mediaURL, fileName string) string

// ClassifyByName is the default heuristic: an item is a video when its
// combined URL+filename contains a video extension or the literal
// substring "video" (case-insensitive); otherwise an image. It inspects
// names, not content, so unmarked video files will be misclassified.
func ClassifyByName(mediaURL, fileName string) string {
	combined := strings.ToLower(mediaURL + " " + fileName)
	for _, marker := range []string{".mp4", ".mov", ".webm", "video"} {
		if strings.Contains(combined, marker) {
			return models.MediaTypeVideo
		}
	}
	return models.MediaTypeImage
}

// Publisher dispatches one scheduled publish call per content item.
// Implemented by the Graph API client.
type Publisher interface {
	ScheduleVideo(ctx context.Context, description, fileURL string, publishAt time.Time) (json.RawMessage, error)
	SchedulePost(ctx context.Context, message, link string, publishAt time.Time) (json.RawMessage, error)
}

// Scheduler assigns publish slots to content items and dispatches them
// sequentially to the external publish API.
type Scheduler struct {
	publisher  Publisher
	classify   Classifier
	logEnabled bool

	// now is injectable for tests.
	now func() time.Time
}

// NewScheduler creates a scheduler. classify may be nil to use the
// default name-based heuristic.
func NewScheduler(publisher Publisher, classify Classifier, logEnabled bool) *Scheduler {
	if classify == nil {
		classify = ClassifyByName
	}
	return &Scheduler{
		publisher:  publisher,
		classify:   classify,
		logEnabled: logEnabled,
		now:        time.Now,
	}
}

// ReferenceDate is tomorrow at local midnight: the date all slot times
// are anchored to.
func (s *Scheduler) ReferenceDate() time.Time {
	now := s.now()
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, now.Location())
}

// classified is one item with its inferred type and per-class index.
type classified struct {
	item  models.ScheduleItemRequest
	media string
	index int
}

// partition splits items into the video and image lists, preserving the
// original relative order within each class.
func (s *Scheduler) partition(items []models.ScheduleItemRequest) (videos, images []classified) {
	for _, item := range items {
		media := s.classify(item.MediaURL, item.FileName)
		if media == models.MediaTypeVideo {
			videos = append(videos, classified{item: item, media: media, index: len(videos)})
		} else {
			images = append(images, classified{item: item, media: media, index: len(images)})
		}
	}
	return videos, images
}

// slotTime computes the absolute publish timestamp for one item. A
// manual HH:MM time always wins; otherwise slot index i of the class
// table applies, with the overflow fallback past the table's end.
func slotTime(ref time.Time, c classified) time.Time {
	if c.item.Time != "" {
		hour, minute := parseHHMM(c.item.Time)
		return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location())
	}

	var slots []string
	base := imageOverflowBase
	if c.media == models.MediaTypeVideo {
		slots = VideoSlots
		base = videoOverflowBase
	} else {
		slots = ImageSlots
	}

	if c.index < len(slots) {
		hour, minute := parseHHMM(slots[c.index])
		return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location())
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), base+c.index, 0, 0, 0, ref.Location())
}

// parseHHMM parses a 24-hour "HH:MM" string. Unparsable components
// default to 0.
func parseHHMM(value string) (hour, minute int) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) > 0 {
		hour, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	}
	if len(parts) > 1 {
		minute, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return hour, minute
}

// PreviewSlots computes the default slot assignment for a set of items
// without dispatching anything.
func (s *Scheduler) PreviewSlots(items []models.ScheduleItemRequest) *models.PreviewSlotsResponse {
	ref := s.ReferenceDate()
	videos, images := s.partition(items)

	preview := make([]models.PreviewSlotItem, 0, len(items))
	for _, c := range append(videos, images...) {
		preview = append(preview, models.PreviewSlotItem{
			FileName:  c.item.FileName,
			MediaType: c.media,
			Time:      slotTime(ref, c).Format("15:04"),
		})
	}

	return &models.PreviewSlotsResponse{
		ReferenceDate: ref.Format("2006-01-02"),
		Items:         preview,
	}
}

// Dispatch sends every selected item to the publish API, one at a time:
// videos first in list order, then images. A failed item does not abort
// the remaining ones; each item's raw API response or error is recorded
// in its result.
func (s *Scheduler) Dispatch(ctx context.Context, items []models.ScheduleItemRequest) *models.ScheduleResponse {
	ref := s.ReferenceDate()
	videos, images := s.partition(items)

	response := &models.ScheduleResponse{}
	for _, c := range append(videos, images...) {
		if !c.item.Selected {
			continue
		}

		publishAt := slotTime(ref, c)
		result := models.ScheduleItemResult{
			FileName:    c.item.FileName,
			MediaType:   c.media,
			ScheduledAt: publishAt.Unix(),
		}

		var raw json.RawMessage
		var err error
		if c.media == models.MediaTypeVideo {
			raw, err = s.publisher.ScheduleVideo(ctx, c.item.Description, c.item.MediaURL, publishAt)
		} else {
			raw, err = s.publisher.SchedulePost(ctx, c.item.Description, c.item.MediaURL, publishAt)
		}

		if raw != nil {
			result.Response = raw
		}
		if err != nil {
			result.Error = err.Error()
			response.Failed++
			if s.logEnabled {
				log.Printf("❌ schedule dispatch failed for %s: %v", c.item.FileName, err)
			}
		} else {
			result.Success = true
			response.Scheduled++
			if s.logEnabled {
				log.Printf("📅 scheduled %s (%s) at %s", c.item.FileName, c.media, publishAt.Format(time.RFC3339))
			}
		}

		response.Results = append(response.Results, result)
	}

	return response
}
