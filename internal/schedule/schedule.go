// Package schedule supplies the fixture list games are selected from.
package schedule

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/opencourt/scoutbook/internal/models"
)

// League is a season schedule as delivered by the federation export.
type League struct {
	LeagueID   string                 `json:"liga_id"`
	LeagueName string                 `json:"liga_name"`
	Season     string                 `json:"saison"`
	Games      []models.ScheduleEntry `json:"spiele"`
}

// Load reads a league schedule from a JSON file. An empty path falls back
// to the embedded default season.
func Load(path string) (*League, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}

	var league League
	if err := json.Unmarshal(data, &league); err != nil {
		return nil, fmt.Errorf("failed to parse schedule file: %w", err)
	}
	return &league, nil
}

// Find returns the entry with the given match number.
func (l *League) Find(matchNumber string) (models.ScheduleEntry, bool) {
	for _, g := range l.Games {
		if g.MatchNumber == matchNumber {
			return g, true
		}
	}
	return models.ScheduleEntry{}, false
}

// Default returns the bundled season schedule.
func Default() *League {
	return &League{
		LeagueID:   "51961",
		LeagueName: "U10 mixed Bezirksliga (U10 Oberpfalz)",
		Season:     "2024/2025",
		Games: []models.ScheduleEntry{
			{MatchNumber: "1085", Date: "04.10.2025", Time: "11:00", HomeTeam: "Fibalon Baskets Neumarkt", AwayTeam: "DJK Neustadt a. d. Waldnaab 1", Venue: "Mittelschule West"},
			{MatchNumber: "1048", Date: "05.10.2025", Time: "14:00", HomeTeam: "TSV 1880 Schwandorf", AwayTeam: "Regensburg Baskets 2", Venue: "Oberpfalzhalle"},
			{MatchNumber: "1049", Date: "12.10.2025", Time: "12:00", HomeTeam: "DJK Neustadt a. d. Waldnaab 1", AwayTeam: "Regensburg Baskets 2", Venue: "Gymnasium"},
			{MatchNumber: "1090", Date: "18.10.2025", Time: "10:00", HomeTeam: "TV Amberg-Sulzbach BSG 2", AwayTeam: "Fibalon Baskets Neumarkt", Venue: "triMAX-Halle"},
			{MatchNumber: "1055", Date: "25.10.2025", Time: "10:00", HomeTeam: "Regensburg Baskets 2", AwayTeam: "Fibalon Baskets Neumarkt", Venue: "Sporthalle Königswiesen"},
			{MatchNumber: "1096", Date: "25.10.2025", Time: "11:00", HomeTeam: "DJK Neustadt a. d. Waldnaab 1", AwayTeam: "TV Amberg-Sulzbach BSG 2", Venue: "Gymnasium"},
			{MatchNumber: "1074", Date: "26.10.2025", Time: "10:00", HomeTeam: "TV Amberg-Sulzbach BSG 2", AwayTeam: "Regensburg Baskets 1", Venue: "triMAX-Halle"},
			{MatchNumber: "1087", Date: "26.10.2025", Time: "12:00", HomeTeam: "TSV 1880 Schwandorf", AwayTeam: "TB Weiden Basketball", Venue: "Oberpfalzhalle"},
		},
	}
}
