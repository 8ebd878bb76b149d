package publisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

type recordedRequest struct {
	path string
	form url.Values
}

func graphTestServer(t *testing.T, status int, body string) (*GraphClient, *recordedRequest) {
	t.Helper()

	recorded := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		recorded.path = r.URL.Path
		recorded.form = r.PostForm

		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q, want form-urlencoded", ct)
		}

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client := NewGraphClient(Config{
		BaseURL: server.URL,
		PageID:  "page42",
		Token:   "tok-secret",
	})
	return client, recorded
}

func TestScheduleVideo(t *testing.T) {
	client, recorded := graphTestServer(t, http.StatusOK, `{"id":"vid-1"}`)

	publishAt := time.Date(2026, 3, 16, 2, 0, 0, 0, time.UTC)
	raw, err := client.ScheduleVideo(context.Background(), "monday recap", "https://cdn.example.com/clip.mp4", publishAt)
	if err != nil {
		t.Fatalf("ScheduleVideo() error = %v", err)
	}
	if string(raw) != `{"id":"vid-1"}` {
		t.Errorf("response = %s", raw)
	}

	if recorded.path != "/page42/videos" {
		t.Errorf("path = %q, want /page42/videos", recorded.path)
	}
	if got := recorded.form.Get("description"); got != "monday recap" {
		t.Errorf("description = %q", got)
	}
	if got := recorded.form.Get("file_url"); got != "https://cdn.example.com/clip.mp4" {
		t.Errorf("file_url = %q", got)
	}
	if got := recorded.form.Get("published"); got != "false" {
		t.Errorf("published = %q, want false", got)
	}
	if got := recorded.form.Get("scheduled_publish_time"); got != strconv.FormatInt(publishAt.Unix(), 10) {
		t.Errorf("scheduled_publish_time = %q, want %d", got, publishAt.Unix())
	}
	if got := recorded.form.Get("access_token"); got != "tok-secret" {
		t.Errorf("access_token = %q", got)
	}
}

func TestSchedulePost(t *testing.T) {
	client, recorded := graphTestServer(t, http.StatusOK, `{"id":"post-1"}`)

	publishAt := time.Date(2026, 3, 16, 0, 30, 0, 0, time.UTC)
	if _, err := client.SchedulePost(context.Background(), "cover art", "https://cdn.example.com/photo.png", publishAt); err != nil {
		t.Fatalf("SchedulePost() error = %v", err)
	}

	if recorded.path != "/page42/feed" {
		t.Errorf("path = %q, want /page42/feed", recorded.path)
	}
	if got := recorded.form.Get("message"); got != "cover art" {
		t.Errorf("message = %q", got)
	}
	if got := recorded.form.Get("link"); got != "https://cdn.example.com/photo.png" {
		t.Errorf("link = %q", got)
	}
	if got := recorded.form.Get("published"); got != "false" {
		t.Errorf("published = %q, want false", got)
	}
}

func TestPostErrorKeepsRawBody(t *testing.T) {
	client, _ := graphTestServer(t, http.StatusBadRequest, `{"error":{"message":"Invalid token"}}`)

	raw, err := client.ScheduleVideo(context.Background(), "x", "https://cdn.example.com/clip.mp4", time.Now())
	if err == nil {
		t.Fatal("error = nil, want status failure")
	}
	// The raw body is preserved so the dispatch result can record it.
	if string(raw) != `{"error":{"message":"Invalid token"}}` {
		t.Errorf("raw = %s, want the error body", raw)
	}
}

func TestConfigured(t *testing.T) {
	tests := []struct {
		name   string
		pageID string
		token  string
		want   bool
	}{
		{"both set", "page42", "tok", true},
		{"missing token", "page42", "", false},
		{"missing page", "", "tok", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewGraphClient(Config{PageID: tt.pageID, Token: tt.token})
			if got := client.Configured(); got != tt.want {
				t.Errorf("Configured() = %t, want %t", got, tt.want)
			}
		})
	}
}
