package schedule

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	league := Default()

	if league.LeagueID != "51961" {
		t.Errorf("expected league id 51961, got %q", league.LeagueID)
	}
	if len(league.Games) != 8 {
		t.Errorf("expected 8 fixtures, got %d", len(league.Games))
	}

	entry, ok := league.Find("1085")
	if !ok {
		t.Fatal("expected fixture 1085 in the default schedule")
	}
	if entry.HomeTeam != "Fibalon Baskets Neumarkt" {
		t.Errorf("unexpected home team %q", entry.HomeTeam)
	}
	if entry.AwayTeam != "DJK Neustadt a. d. Waldnaab 1" {
		t.Errorf("unexpected away team %q", entry.AwayTeam)
	}
}

func TestFindMiss(t *testing.T) {
	if _, ok := Default().Find("9999"); ok {
		t.Error("expected miss for unknown match number")
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path falls back to default", func(t *testing.T) {
		league, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if league.LeagueID != "51961" {
			t.Errorf("expected default league, got %q", league.LeagueID)
		}
	})

	t.Run("reads a schedule file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schedule.json")
		data := `{
			"liga_id": "12345",
			"liga_name": "Testliga",
			"saison": "2025/2026",
			"spiele": [
				{"spiel_nr": "1", "datum": "01.01.2026", "uhrzeit": "10:00", "heimmannschaft": "A", "gastmannschaft": "B", "spielhalle": "Halle"}
			]
		}`
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("writing fixture failed: %v", err)
		}

		league, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if league.LeagueID != "12345" {
			t.Errorf("expected league 12345, got %q", league.LeagueID)
		}
		entry, ok := league.Find("1")
		if !ok {
			t.Fatal("expected fixture 1")
		}
		if entry.HomeTeam != "A" || entry.AwayTeam != "B" {
			t.Errorf("unexpected teams %q vs %q", entry.HomeTeam, entry.AwayTeam)
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("invalid json errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatalf("writing fixture failed: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected an error for invalid json")
		}
	})
}
