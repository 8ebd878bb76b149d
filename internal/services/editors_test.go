package services

import (
	"context"
	"regexp"
	"testing"

	"content-portal-api/internal/models"
	"content-portal-api/internal/repository"
)

type fakeEditorRepo struct {
	repository.EditorRepository
	created *models.Editor
}

func (r *fakeEditorRepo) Create(_ context.Context, editor *models.Editor) error {
	r.created = editor
	return nil
}

var secretLinkPattern = regexp.MustCompile(`^(video|graphic)-[a-z0-9]{8}-\d{13}$`)

func TestNewSecretLinkFormat(t *testing.T) {
	for _, editorType := range []string{models.EditorTypeVideo, models.EditorTypeGraphic} {
		link := newSecretLink(editorType)
		if !secretLinkPattern.MatchString(link) {
			t.Errorf("newSecretLink(%q) = %q, want {type}-{8 chars}-{millis}", editorType, link)
		}
	}
}

func TestNewSecretLinkUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		link := newSecretLink(models.EditorTypeVideo)
		if seen[link] {
			t.Fatalf("duplicate secret link after %d iterations: %s", i, link)
		}
		seen[link] = true
	}
}

func TestEditorCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateEditorRequest
		wantErr bool
	}{
		{
			name: "valid video editor",
			req:  models.CreateEditorRequest{Name: "Jordan", Description: "Weekly recap cuts", Type: models.EditorTypeVideo},
		},
		{
			name: "valid graphic editor",
			req:  models.CreateEditorRequest{Name: "Sam", Description: "Match day posters", Type: models.EditorTypeGraphic},
		},
		{
			name:    "missing name",
			req:     models.CreateEditorRequest{Description: "Weekly recap cuts", Type: models.EditorTypeVideo},
			wantErr: true,
		},
		{
			name:    "missing description",
			req:     models.CreateEditorRequest{Name: "Jordan", Type: models.EditorTypeVideo},
			wantErr: true,
		},
		{
			name:    "whitespace-only description",
			req:     models.CreateEditorRequest{Name: "Jordan", Description: "   ", Type: models.EditorTypeVideo},
			wantErr: true,
		},
		{
			name:    "unknown type",
			req:     models.CreateEditorRequest{Name: "Jordan", Description: "Podcast edits", Type: "audio"},
			wantErr: true,
		},
		{
			name:    "empty type",
			req:     models.CreateEditorRequest{Name: "Jordan", Description: "Weekly recap cuts"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEditorRepo{}
			s := NewEditorService(repo, nil, nil, nil, nil, nil)

			editor, err := s.Create(context.Background(), &tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Create() error = %v, wantErr %t", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if editor.ID == "" {
				t.Error("editor ID is empty")
			}
			if !secretLinkPattern.MatchString(editor.SecretLink) {
				t.Errorf("SecretLink = %q, not in the expected format", editor.SecretLink)
			}
			if repo.created != editor {
				t.Error("editor was not persisted")
			}
		})
	}
}

func TestEditorCreateTrimsFields(t *testing.T) {
	repo := &fakeEditorRepo{}
	s := NewEditorService(repo, nil, nil, nil, nil, nil)

	editor, err := s.Create(context.Background(), &models.CreateEditorRequest{
		Name:        "  Jordan  ",
		Description: "\tWeekly recap cuts\n",
		Type:        models.EditorTypeVideo,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if editor.Name != "Jordan" {
		t.Errorf("Name = %q, want %q", editor.Name, "Jordan")
	}
	if editor.Description != "Weekly recap cuts" {
		t.Errorf("Description = %q, want %q", editor.Description, "Weekly recap cuts")
	}
}
