package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/maastricht-university/edmo-voice/orchestrator"
)

func newSink(t *testing.T) *SQLiteSink {
	t.Helper()
	s, err := NewSQLiteSink(filepath.Join(t.TempDir(), "analyses.db"))
	if err != nil {
		t.Fatalf("NewSQLiteSink: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newSink(t)
	ctx := context.Background()
	r := &orchestrator.FullResult{
		AnalysisMethod: orchestrator.MethodFull,
		Emotion:        orchestrator.ClipEmotion{Label: "happy", Confidence: 0.8},
		Timeline:       []orchestrator.TimelineEntry{},
		Metadata:       orchestrator.Metadata{Hash: "abc123", Duration: 2},
	}
	key, err := s.Save(ctx, "user-1", r)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := uuid.Parse(key); err != nil {
		t.Fatalf("key %q is not a uuid: %v", key, err)
	}

	rec, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.UserID != "user-1" || rec.Hash != "abc123" || rec.Method != orchestrator.MethodFull {
		t.Fatalf("record = %+v", rec)
	}
	var back orchestrator.FullResult
	if err := json.Unmarshal(rec.Payload, &back); err != nil {
		t.Fatal(err)
	}
	if back.Emotion != r.Emotion {
		t.Fatalf("payload emotion = %+v", back.Emotion)
	}
}

func TestGetUnknownKey(t *testing.T) {
	if _, err := newSink(t).Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newSink(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()
	var keys []string
	for _, emotion := range []string{"calm", "excited", "neutral"} {
		key, err := s.Save(ctx, "user-1", &orchestrator.HeuristicResult{AnalysisMethod: orchestrator.MethodHeuristic, Emotion: emotion})
		if err != nil {
			t.Fatal(err)
		}
		keys = append(keys, key)
	}
	if _, err := s.Save(ctx, "user-2", &orchestrator.HeuristicResult{Emotion: "calm"}); err != nil {
		t.Fatal(err)
	}

	recs, err := s.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	for i, rec := range recs {
		if want := keys[len(keys)-1-i]; rec.ID != want {
			t.Fatalf("record %d = %s, want %s", i, rec.ID, want)
		}
		if rec.Method != orchestrator.MethodHeuristic || rec.Hash != "" {
			t.Fatalf("record %d = %+v", i, rec)
		}
	}
}
