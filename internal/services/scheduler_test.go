package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"content-portal-api/internal/models"
)

type publishCall struct {
	method    string
	text      string
	url       string
	publishAt time.Time
}

type fakePublisher struct {
	calls   []publishCall
	failURL string
}

func (p *fakePublisher) ScheduleVideo(_ context.Context, description, fileURL string, publishAt time.Time) (json.RawMessage, error) {
	p.calls = append(p.calls, publishCall{method: "video", text: description, url: fileURL, publishAt: publishAt})
	if fileURL == p.failURL {
		return json.RawMessage(`{"error":{"message":"boom"}}`), errors.New("publish api returned status 400")
	}
	return json.RawMessage(`{"id":"123"}`), nil
}

func (p *fakePublisher) SchedulePost(_ context.Context, message, link string, publishAt time.Time) (json.RawMessage, error) {
	p.calls = append(p.calls, publishCall{method: "post", text: message, url: link, publishAt: publishAt})
	if link == p.failURL {
		return nil, errors.New("publish api returned status 400")
	}
	return json.RawMessage(`{"id":"456"}`), nil
}

func testScheduler(publisher Publisher) *Scheduler {
	s := NewScheduler(publisher, nil, false)
	// Freeze time: reference date becomes 2026-03-16 local midnight.
	s.now = func() time.Time {
		return time.Date(2026, 3, 15, 13, 45, 0, 0, time.Local)
	}
	return s
}

func TestClassifyByName(t *testing.T) {
	tests := []struct {
		name     string
		mediaURL string
		fileName string
		want     string
	}{
		{"mp4 extension", "https://cdn.example.com/a", "clip.mp4", models.MediaTypeVideo},
		{"uppercase extension", "https://cdn.example.com/a", "clip.MP4", models.MediaTypeVideo},
		{"mov in url", "https://cdn.example.com/raw.mov", "export", models.MediaTypeVideo},
		{"webm extension", "https://cdn.example.com/a", "take.webm", models.MediaTypeVideo},
		{"video substring", "https://cdn.example.com/video/77", "monday", models.MediaTypeVideo},
		{"png is image", "https://cdn.example.com/a", "photo.png", models.MediaTypeImage},
		{"jpg is image", "https://cdn.example.com/shot.jpg", "", models.MediaTypeImage},
		{"no markers defaults to image", "https://cdn.example.com/a", "asset", models.MediaTypeImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyByName(tt.mediaURL, tt.fileName); got != tt.want {
				t.Errorf("ClassifyByName(%q, %q) = %q, want %q", tt.mediaURL, tt.fileName, got, tt.want)
			}
		})
	}
}

func TestReferenceDate(t *testing.T) {
	s := testScheduler(&fakePublisher{})

	ref := s.ReferenceDate()
	want := time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local)
	if !ref.Equal(want) {
		t.Errorf("ReferenceDate() = %s, want %s", ref, want)
	}
}

func TestPreviewSlotsAssignment(t *testing.T) {
	s := testScheduler(&fakePublisher{})

	// Six videos: four fixed slots then overflow hours 16 and 17.
	var items []models.ScheduleItemRequest
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4", "d.mp4", "e.mp4", "f.mp4"} {
		items = append(items, models.ScheduleItemRequest{FileName: name, MediaURL: "https://cdn.example.com/" + name})
	}
	items = append(items, models.ScheduleItemRequest{FileName: "one.png", MediaURL: "https://cdn.example.com/one.png"})
	items = append(items, models.ScheduleItemRequest{FileName: "two.png", MediaURL: "https://cdn.example.com/two.png"})

	preview := s.PreviewSlots(items)

	if preview.ReferenceDate != "2026-03-16" {
		t.Errorf("ReferenceDate = %q, want %q", preview.ReferenceDate, "2026-03-16")
	}

	wantTimes := []string{"00:00", "02:00", "04:00", "06:00", "16:00", "17:00", "00:30", "01:00"}
	if len(preview.Items) != len(wantTimes) {
		t.Fatalf("len(Items) = %d, want %d", len(preview.Items), len(wantTimes))
	}
	for i, want := range wantTimes {
		if preview.Items[i].Time != want {
			t.Errorf("Items[%d].Time = %q, want %q", i, preview.Items[i].Time, want)
		}
	}

	// Videos are listed before images regardless of submission order.
	for i := 0; i < 6; i++ {
		if preview.Items[i].MediaType != models.MediaTypeVideo {
			t.Errorf("Items[%d].MediaType = %q, want video", i, preview.Items[i].MediaType)
		}
	}
}

func TestSlotTimeManualOverride(t *testing.T) {
	ref := time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local)

	got := slotTime(ref, classified{
		item:  models.ScheduleItemRequest{FileName: "clip.mp4", Time: "14:30"},
		media: models.MediaTypeVideo,
		index: 2,
	})

	want := time.Date(2026, 3, 16, 14, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("slotTime() = %s, want %s", got, want)
	}
}

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		value      string
		wantHour   int
		wantMinute int
	}{
		{"14:30", 14, 30},
		{"00:00", 0, 0},
		{"6:5", 6, 5},
		{"14", 14, 0},
		{"bad:30", 0, 30},
		{"", 0, 0},
	}

	for _, tt := range tests {
		hour, minute := parseHHMM(tt.value)
		if hour != tt.wantHour || minute != tt.wantMinute {
			t.Errorf("parseHHMM(%q) = (%d, %d), want (%d, %d)", tt.value, hour, minute, tt.wantHour, tt.wantMinute)
		}
	}
}

func TestDispatchOrderAndSelection(t *testing.T) {
	publisher := &fakePublisher{}
	s := testScheduler(publisher)

	items := []models.ScheduleItemRequest{
		{FileName: "one.png", MediaURL: "https://cdn.example.com/one.png", Description: "first image", Selected: true},
		{FileName: "a.mp4", MediaURL: "https://cdn.example.com/a.mp4", Description: "first video", Selected: true},
		{FileName: "skip.png", MediaURL: "https://cdn.example.com/skip.png", Selected: false},
		{FileName: "b.mp4", MediaURL: "https://cdn.example.com/b.mp4", Description: "second video", Selected: true},
	}

	response := s.Dispatch(context.Background(), items)

	if response.Scheduled != 3 || response.Failed != 0 {
		t.Fatalf("Scheduled = %d, Failed = %d, want 3, 0", response.Scheduled, response.Failed)
	}
	if len(publisher.calls) != 3 {
		t.Fatalf("publisher calls = %d, want 3", len(publisher.calls))
	}

	// Videos dispatch first, in submission order, then images.
	wantOrder := []struct {
		method string
		url    string
	}{
		{"video", "https://cdn.example.com/a.mp4"},
		{"video", "https://cdn.example.com/b.mp4"},
		{"post", "https://cdn.example.com/one.png"},
	}
	for i, want := range wantOrder {
		if publisher.calls[i].method != want.method || publisher.calls[i].url != want.url {
			t.Errorf("calls[%d] = (%s, %s), want (%s, %s)",
				i, publisher.calls[i].method, publisher.calls[i].url, want.method, want.url)
		}
	}

	// Videos take the first two fixed slots, the image the first image slot.
	wantFirst := time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local)
	if !publisher.calls[0].publishAt.Equal(wantFirst) {
		t.Errorf("first publishAt = %s, want %s", publisher.calls[0].publishAt, wantFirst)
	}
	wantImage := time.Date(2026, 3, 16, 0, 30, 0, 0, time.Local)
	if !publisher.calls[2].publishAt.Equal(wantImage) {
		t.Errorf("image publishAt = %s, want %s", publisher.calls[2].publishAt, wantImage)
	}
}

func TestDispatchContinuesAfterFailure(t *testing.T) {
	publisher := &fakePublisher{failURL: "https://cdn.example.com/a.mp4"}
	s := testScheduler(publisher)

	items := []models.ScheduleItemRequest{
		{FileName: "a.mp4", MediaURL: "https://cdn.example.com/a.mp4", Selected: true},
		{FileName: "b.mp4", MediaURL: "https://cdn.example.com/b.mp4", Selected: true},
	}

	response := s.Dispatch(context.Background(), items)

	if response.Scheduled != 1 || response.Failed != 1 {
		t.Fatalf("Scheduled = %d, Failed = %d, want 1, 1", response.Scheduled, response.Failed)
	}
	if len(response.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(response.Results))
	}

	failed := response.Results[0]
	if failed.Success {
		t.Error("first result Success = true, want false")
	}
	if failed.Error == "" {
		t.Error("first result has empty Error")
	}
	// The raw API response is preserved even on failure.
	if failed.Response == nil {
		t.Error("first result Response = nil, want raw error body")
	}

	if !response.Results[1].Success {
		t.Error("second result Success = false, want true")
	}
}
