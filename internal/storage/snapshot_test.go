package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/teamcollar/stem-assessment/internal/content"
	"github.com/teamcollar/stem-assessment/internal/database"
	"github.com/teamcollar/stem-assessment/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assessment.db")
	db, err := database.Open(context.Background(), path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSnapshot() *model.Snapshot {
	sections := content.Sections()
	questions := content.Questions(sections)
	startedAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	answer := model.AnswerB
	questions[0].Status = model.StatusAnswered
	questions[0].Answer = &answer
	questions[4].Status = model.StatusCurrent

	return &model.Snapshot{
		SessionID:         uuid.New(),
		Sections:          sections,
		Questions:         questions,
		CurrentQuestionID: 5,
		CurrentSectionID:  1,
		CursorPriorStatus: model.StatusNotVisited,
		TestStarted:       true,
		TestStartedAt:     &startedAt,
		SectionStartedAt:  &startedAt,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New(openTestDB(t), "quiz-storage")
	ctx := context.Background()

	want := sampleSnapshot()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("expected a snapshot, got none")
	}
	if got.SessionID != want.SessionID {
		t.Fatalf("session id changed: %s != %s", got.SessionID, want.SessionID)
	}
	if got.CurrentQuestionID != 5 || got.CurrentSectionID != 1 {
		t.Fatalf("cursor changed: question %d section %d", got.CurrentQuestionID, got.CurrentSectionID)
	}
	if len(got.Questions) != len(want.Questions) {
		t.Fatalf("expected %d questions, got %d", len(want.Questions), len(got.Questions))
	}
	if got.Questions[0].Status != model.StatusAnswered || got.Questions[0].Answer == nil || *got.Questions[0].Answer != model.AnswerB {
		t.Fatalf("answer lost in round trip: %+v", got.Questions[0])
	}
	if got.TestStartedAt == nil || !got.TestStartedAt.Equal(*want.TestStartedAt) {
		t.Fatalf("start timestamp changed: %v", got.TestStartedAt)
	}
}

func TestLoadWithoutRecord(t *testing.T) {
	store := New(openTestDB(t), "quiz-storage")

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected no snapshot, got %+v", snap)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := New(openTestDB(t), "quiz-storage")
	ctx := context.Background()

	first := sampleSnapshot()
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := sampleSnapshot()
	second.CurrentQuestionID = 12
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.SessionID != second.SessionID || got.CurrentQuestionID != 12 {
		t.Fatalf("upsert did not replace the record: %+v", got)
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	primary := New(db, "quiz-storage")
	other := New(db, "practice-storage")

	if err := primary.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err := other.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap != nil {
		t.Fatal("record leaked across namespaces")
	}

	if err := other.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if snap, _ := primary.Load(ctx); snap == nil {
		t.Fatal("clearing one namespace removed another's record")
	}
}

func TestClearRemovesRecord(t *testing.T) {
	store := New(openTestDB(t), "quiz-storage")
	ctx := context.Background()

	if err := store.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap != nil {
		t.Fatal("record survived clear")
	}

	// Clearing an empty namespace is not an error.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestLoadRejectsCorruptPayload(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO session_snapshots (namespace, payload, updated_at) VALUES ($1, $2, $3)`,
		"quiz-storage", "{not json", time.Now().Unix())
	if err != nil {
		t.Fatalf("seed corrupt record: %v", err)
	}

	if _, err := New(db, "quiz-storage").Load(ctx); err == nil {
		t.Fatal("expected an error for a corrupt payload")
	}
}
