package repository

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"content-portal-api/internal/database"
	"content-portal-api/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// setupTestDB starts a PostgreSQL container and applies the embedded
// migrations. Skipped unless TEST_INTEGRATION is set.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("portal_test"),
		postgres.WithUsername("portal"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to build connection string: %v", err)
	}

	if err := database.Migrate(dsn); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	pool, err := database.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func insertTestEditor(t *testing.T, pool *pgxpool.Pool) *models.Editor {
	t.Helper()

	editor := &models.Editor{
		ID:         uuid.NewString(),
		Name:       "Jordan",
		Type:       models.EditorTypeVideo,
		SecretLink: "video-" + uuid.NewString()[:8],
	}
	if err := NewEditorRepository(pool).Create(context.Background(), editor); err != nil {
		t.Fatalf("Create() editor error: %v", err)
	}
	return editor
}

func TestDeleteByEditorReturnsMediaAndThumbnailURLs(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewUploadRepository(pool)

	editor := insertTestEditor(t, pool)

	thumb := "https://cdn.example.com/thumbnails/ed1/1-a.jpg"
	uploads := []*models.Upload{
		{
			ID:           uuid.NewString(),
			EditorID:     editor.ID,
			FileName:     "a.mp4",
			MediaURL:     "https://cdn.example.com/uploads/ed1/1-a.mp4",
			MediaType:    models.MediaTypeVideo,
			ThumbnailURL: &thumb,
		},
		{
			ID:        uuid.NewString(),
			EditorID:  editor.ID,
			FileName:  "b.png",
			MediaURL:  "https://cdn.example.com/uploads/ed1/2-b.png",
			MediaType: models.MediaTypeImage,
		},
	}
	for _, u := range uploads {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create() upload error: %v", err)
		}
	}

	urls, err := repo.DeleteByEditor(ctx, editor.ID)
	if err != nil {
		t.Fatalf("DeleteByEditor() error: %v", err)
	}

	// The video contributes its thumbnail too; the image only its media URL.
	want := []string{
		"https://cdn.example.com/thumbnails/ed1/1-a.jpg",
		"https://cdn.example.com/uploads/ed1/1-a.mp4",
		"https://cdn.example.com/uploads/ed1/2-b.png",
	}
	sort.Strings(urls)
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}

	remaining, err := repo.ListByEditor(ctx, editor.ID)
	if err != nil {
		t.Fatalf("ListByEditor() error: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("remaining uploads = %d, want 0", len(remaining))
	}
}

func TestEditorSecretLinkConflict(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewEditorRepository(pool)

	editor := insertTestEditor(t, pool)

	duplicate := &models.Editor{
		ID:         uuid.NewString(),
		Name:       "Sam",
		Type:       models.EditorTypeGraphic,
		SecretLink: editor.SecretLink,
	}
	if err := repo.Create(ctx, duplicate); !errors.Is(err, ErrConflict) {
		t.Errorf("Create() with duplicate secret link error = %v, want ErrConflict", err)
	}
}
