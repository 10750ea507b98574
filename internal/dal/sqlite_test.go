package dal

import (
	"path/filepath"
	"testing"
)

func newTestSQLiteDAL(t *testing.T) *SQLiteDAL {
	t.Helper()
	s, err := NewSQLiteDAL(filepath.Join(t.TempDir(), "scoutbook_test.sqlite"))
	if err != nil {
		t.Fatalf("NewSQLiteDAL failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteDALRoundTrip(t *testing.T) {
	s := newTestSQLiteDAL(t)

	initial, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(initial) != 0 {
		t.Errorf("expected empty store before first save, got %d records", len(initial))
	}

	if err := s.Save(sampleStore()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	rec, ok := loaded["1085_1"]
	if !ok {
		t.Fatal("expected record under key 1085_1")
	}
	if rec.Game.Opponent != "DJK Neustadt a. d. Waldnaab 1" {
		t.Errorf("unexpected opponent %q", rec.Game.Opponent)
	}
	if got := rec.Players[0].Ratings["wurfqualitaet"]; got != 3 {
		t.Errorf("expected rating 3, got %d", got)
	}
}

func TestSQLiteDALOverwritesSlot(t *testing.T) {
	s := newTestSQLiteDAL(t)

	if err := s.Save(sampleStore()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	updated := sampleStore()
	rec := updated["1085_1"]
	rec.Players = append(rec.Players, rec.Players[0].Clone())
	rec.Players[1].Number = 12
	updated["1085_1"] = rec

	if err := s.Save(updated); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected the single slot to be overwritten, got %d records", len(loaded))
	}
	if len(loaded["1085_1"].Players) != 2 {
		t.Errorf("expected 2 players after overwrite, got %d", len(loaded["1085_1"].Players))
	}
}

func TestSQLiteDALClear(t *testing.T) {
	s := newTestSQLiteDAL(t)

	if err := s.Save(sampleStore()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty store after clear, got %d records", len(loaded))
	}
}
