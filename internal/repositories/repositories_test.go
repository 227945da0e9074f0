package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newStoredVideo(t *testing.T, repo *VideoRepository, title string) *models.Video {
	t.Helper()

	video := models.NewVideo("file-1", title, "video/mp4", 1024)
	video.SetStorageKey("videos/" + title)
	video.SetSHA256("abc123")

	if err := repo.Create(video); err != nil {
		t.Fatalf("failed to create video: %v", err)
	}
	return video
}

func TestVideoRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		video := newStoredVideo(t, repo, "clip.mp4")

		if video.ID() == "" {
			t.Error("video ID should be set after creation")
		}
		if video.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", video.Sequence())
		}
	})

	t.Run("Sequence", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		first := newStoredVideo(t, repo, "a.mp4")
		second := newStoredVideo(t, repo, "b.mp4")

		if second.Sequence() != first.Sequence()+1 {
			t.Errorf("expected consecutive sequences, got %d and %d", first.Sequence(), second.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		video := newStoredVideo(t, repo, "Clip.MP4")

		retrieved, err := repo.Get(video.ID())
		if err != nil {
			t.Fatalf("failed to get video: %v", err)
		}

		if retrieved.Title() != "Clip.MP4" {
			t.Errorf("expected title Clip.MP4, got %s", retrieved.Title())
		}
		if retrieved.Extension() != ".mp4" {
			t.Errorf("expected extension .mp4, got %s", retrieved.Extension())
		}
		if retrieved.Size() != 1024 {
			t.Errorf("expected size 1024, got %d", retrieved.Size())
		}
		if retrieved.StorageKey() != "videos/Clip.MP4" {
			t.Errorf("unexpected storage key %s", retrieved.StorageKey())
		}
		if retrieved.SHA256() != "abc123" {
			t.Errorf("unexpected sha256 %s", retrieved.SHA256())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		video := newStoredVideo(t, repo, "clip.mp4")

		video.SetSHA256("def456")
		video.SetSize(2048)
		if err := repo.Update(video); err != nil {
			t.Fatalf("failed to update video: %v", err)
		}

		retrieved, err := repo.Get(video.ID())
		if err != nil {
			t.Fatalf("failed to get video: %v", err)
		}
		if retrieved.SHA256() != "def456" || retrieved.Size() != 2048 {
			t.Errorf("update not persisted: %s %d", retrieved.SHA256(), retrieved.Size())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		video := newStoredVideo(t, repo, "clip.mp4")

		if err := repo.Delete(video.ID()); err != nil {
			t.Fatalf("failed to delete video: %v", err)
		}

		if _, err := repo.Get(video.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		newStoredVideo(t, repo, "a.mp4")
		other := models.NewVideo("file-2", "b.mov", "video/quicktime", 10)
		other.SetStorageKey("videos/b.mov")
		other.SetSHA256("fff")
		if err := repo.Create(other); err != nil {
			t.Fatalf("failed to create video: %v", err)
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list videos: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 videos, got %d", len(all))
		}
		if all[0].Title() != "a.mp4" {
			t.Errorf("expected sequence order, got %s first", all[0].Title())
		}

		filtered, err := repo.List(map[string]any{"file_id": "file-2"})
		if err != nil {
			t.Fatalf("failed to list videos: %v", err)
		}
		if len(filtered) != 1 || filtered[0].ID() != other.ID() {
			t.Errorf("expected only file-2, got %d videos", len(filtered))
		}

		bySum, err := repo.List(map[string]any{"sha256": "fff"})
		if err != nil {
			t.Fatalf("failed to list videos: %v", err)
		}
		if len(bySum) != 1 {
			t.Errorf("expected 1 video by checksum, got %d", len(bySum))
		}
	})
}

func TestOperationRepository(t *testing.T) {
	t.Run("CreateAndGet", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewOperationRepository(db)
		op := models.NewOperationInfo("", models.OperationLoadVideoToDatabase, time.Now())

		if err := repo.Create(op); err != nil {
			t.Fatalf("failed to create operation: %v", err)
		}
		if op.ID == "" {
			t.Fatal("operation ID should be generated")
		}

		retrieved, err := repo.Get(op.ID)
		if err != nil {
			t.Fatalf("failed to get operation: %v", err)
		}
		if retrieved.Type != models.OperationLoadVideoToDatabase {
			t.Errorf("expected type %s, got %s", models.OperationLoadVideoToDatabase, retrieved.Type)
		}
		if retrieved.Status != models.StatusInProcess {
			t.Errorf("expected status InProcess, got %s", retrieved.Status)
		}
		if retrieved.Faults != nil {
			t.Errorf("expected nil faults, got %v", retrieved.Faults)
		}
		if retrieved.VideoID != "" {
			t.Errorf("expected empty video id, got %s", retrieved.VideoID)
		}
	})

	t.Run("UpdateWithFaults", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		videos := NewVideoRepository(db)
		video := newStoredVideo(t, videos, "clip.mp4")

		repo := NewOperationRepository(db)
		op := models.NewOperationInfo("", models.OperationLoadVideoToDatabase, time.Now())
		if err := repo.Create(op); err != nil {
			t.Fatalf("failed to create operation: %v", err)
		}

		detail := models.NewFault("Inner", "inner failure", nil)
		op.VideoID = video.ID()
		op.Fail(models.NewFault("Outer", "", &detail), time.Now())

		if err := repo.Update(op); err != nil {
			t.Fatalf("failed to update operation: %v", err)
		}

		retrieved, err := repo.Get(op.ID)
		if err != nil {
			t.Fatalf("failed to get operation: %v", err)
		}
		if retrieved.Status != models.StatusDie {
			t.Errorf("expected status Die, got %s", retrieved.Status)
		}
		if retrieved.VideoID != video.ID() {
			t.Errorf("expected video id %s, got %s", video.ID(), retrieved.VideoID)
		}
		if len(retrieved.Faults) != 1 {
			t.Fatalf("expected 1 fault, got %d", len(retrieved.Faults))
		}
		if retrieved.Faults[0].Message != "Fault Outer has occurred" {
			t.Errorf("unexpected fault message %q", retrieved.Faults[0].Message)
		}
		if retrieved.Faults[0].Detail == nil || retrieved.Faults[0].Detail.Code != "Inner" {
			t.Errorf("expected chained detail, got %+v", retrieved.Faults[0].Detail)
		}
	})
}

func TestBorrowingRepository(t *testing.T) {
	records := []models.Borrowing{
		{TitleLicense: "Licensed A", TitlePiracy: "clip.mp4", TimeLicenseStart: 10, TimeLicenseFinish: 20, TimePiracyStart: 0, TimePiracyFinish: 10},
		{TitleLicense: "Licensed B", TitlePiracy: "clip.mp4", LicenseLink: "https://example.com/b", TimeLicenseStart: 5, TimeLicenseFinish: 9, TimePiracyStart: 30, TimePiracyFinish: 34},
	}

	t.Run("ReplaceAndList", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		video := newStoredVideo(t, NewVideoRepository(db), "clip.mp4")
		repo := NewBorrowingRepository(db)

		input := append([]models.Borrowing(nil), records...)
		if err := repo.ReplaceForVideo(video.ID(), input); err != nil {
			t.Fatalf("failed to store borrowings: %v", err)
		}

		if input[0].ID == "" || input[1].ID == "" {
			t.Error("borrowing IDs should be assigned")
		}

		listed, err := repo.ListByVideo(video.ID())
		if err != nil {
			t.Fatalf("failed to list borrowings: %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("expected 2 borrowings, got %d", len(listed))
		}
		if listed[0].TitleLicense != "Licensed A" || listed[1].TitleLicense != "Licensed B" {
			t.Errorf("expected detector order, got %s, %s", listed[0].TitleLicense, listed[1].TitleLicense)
		}
		if listed[1].LicenseLink != "https://example.com/b" || listed[1].TimePiracyFinish != 34 {
			t.Errorf("fields not round-tripped: %+v", listed[1])
		}
	})

	t.Run("ReplaceOverwrites", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		video := newStoredVideo(t, NewVideoRepository(db), "clip.mp4")
		repo := NewBorrowingRepository(db)

		if err := repo.ReplaceForVideo(video.ID(), append([]models.Borrowing(nil), records...)); err != nil {
			t.Fatalf("failed to store borrowings: %v", err)
		}
		if err := repo.ReplaceForVideo(video.ID(), records[:1:1]); err != nil {
			t.Fatalf("failed to replace borrowings: %v", err)
		}

		listed, err := repo.ListByVideo(video.ID())
		if err != nil {
			t.Fatalf("failed to list borrowings: %v", err)
		}
		if len(listed) != 1 {
			t.Errorf("expected 1 borrowing after replace, got %d", len(listed))
		}
	})

	t.Run("EmptyList", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		listed, err := NewBorrowingRepository(db).ListByVideo("missing")
		if err != nil {
			t.Fatalf("failed to list borrowings: %v", err)
		}
		if listed == nil || len(listed) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", listed)
		}
	})
}
