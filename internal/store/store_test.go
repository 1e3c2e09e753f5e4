package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
)

func newTestStore(t *testing.T, maxRecords int) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), maxRecords)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(sessionID string, ts time.Time) *models.Record {
	return &models.Record{
		Timestamp:      ts,
		SessionID:      sessionID,
		BaselinePath:   "/images/baseline.jpg",
		CurrentPath:    "/images/current.jpg",
		MonitoringType: "security",
		PromptStyle:    "formal",
		PromptUsed:     "prompt",
		AIResponse:     "STATUS: NORMAL",
		Status:         models.StatusNormal,
		Confidence:     85.0,
		ThreatLevel:    1,
		Summary:        "quiet",
	}
}

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	s, err := New(dbPath, 100)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSaveAndList(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	rec := testRecord("abc123", time.Now())
	rec.CustomContext = "watch the door"
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if rec.ID == 0 {
		t.Error("Save did not assign an id")
	}

	records, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	got := records[0]
	if got.SessionID != "abc123" {
		t.Errorf("SessionID = %q", got.SessionID)
	}
	if got.Status != models.StatusNormal || got.Confidence != 85.0 || got.ThreatLevel != 1 {
		t.Errorf("analysis fields = %s/%v/%d", got.Status, got.Confidence, got.ThreatLevel)
	}
	if got.CustomContext != "watch the door" {
		t.Errorf("CustomContext = %q", got.CustomContext)
	}
	if got.HasVideo {
		t.Error("HasVideo true for a record without video")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		rec := testRecord(fmt.Sprintf("session-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	records, err := s.List(ctx, 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, want := range []string{"session-4", "session-3", "session-2"} {
		if records[i].SessionID != want {
			t.Errorf("records[%d].SessionID = %q, want %q", i, records[i].SessionID, want)
		}
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.After(records[i-1].Timestamp) {
			t.Error("records not ordered newest first")
		}
	}
}

func TestRetentionDeletesOldest(t *testing.T) {
	const max = 5
	s := newTestStore(t, max)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < max+3; i++ {
		rec := testRecord(fmt.Sprintf("session-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != max {
		t.Errorf("Count = %d, want %d", n, max)
	}

	records, err := s.List(ctx, max+3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, rec := range records {
		// sessions 0..2 were the oldest, they must be gone
		for _, old := range []string{"session-0", "session-1", "session-2"} {
			if rec.SessionID == old {
				t.Errorf("oldest record %s survived retention", old)
			}
		}
	}
}

func TestRetentionDisabled(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if err := s.Save(ctx, testRecord("s", time.Now().Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 20 {
		t.Errorf("Count = %d, want 20 with retention disabled", n)
	}
}

func TestHasVideoDerivedFromArtifact(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	videoPath := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(videoPath, []byte("mp4"), 0644); err != nil {
		t.Fatal(err)
	}

	existing := testRecord("with-video", time.Now())
	existing.VideoPath = videoPath
	if err := s.Save(ctx, existing); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !existing.HasVideo {
		t.Error("HasVideo false for an existing artifact")
	}

	missing := testRecord("missing-video", time.Now().Add(time.Second))
	missing.VideoPath = filepath.Join(t.TempDir(), "nope.mp4")
	if err := s.Save(ctx, missing); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if missing.HasVideo {
		t.Error("HasVideo true for a missing artifact")
	}

	records, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, rec := range records {
		switch rec.SessionID {
		case "with-video":
			if !rec.HasVideo {
				t.Error("stored HasVideo lost for existing artifact")
			}
		case "missing-video":
			if rec.HasVideo {
				t.Error("stored HasVideo set for missing artifact")
			}
		}
	}
}

func TestSaveFillsZeroTimestamp(t *testing.T) {
	s := newTestStore(t, 100)
	rec := testRecord("ts", time.Time{})
	if err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if rec.Timestamp.IsZero() {
		t.Error("zero timestamp not filled at save time")
	}
}
