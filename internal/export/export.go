// Package export renders scouting records as JSON or CSV downloads.
// The CSV layout is fixed at 16 columns and kept byte-compatible with the
// files scouts already have spreadsheets built around.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/opencourt/scoutbook/internal/models"
	"github.com/opencourt/scoutbook/internal/schema"
	"github.com/opencourt/scoutbook/internal/scoring"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

const csvHeader = "Spiel,Datum,Gegner,Spieler_Nr,Groesse," +
	"Wurf_Qualitaet,Wurf_Haeufigkeit,Schnelligkeit,Ballbehandlung,Pass_Qualitaet," +
	"Ballbesitz,Verteidigung,Rebounding,Aktivitaet,Gefahr,Durchschnitt\n"

// currentGameEnvelope is the JSON shape of a single-game export.
type currentGameEnvelope struct {
	Game       models.Game     `json:"game"`
	Players    []models.Player `json:"players"`
	ExportDate time.Time       `json:"exportDate"`
}

// allGamesEnvelope is the JSON shape of a full-store export.
type allGamesEnvelope struct {
	Games      models.Store `json:"games"`
	ExportDate time.Time    `json:"exportDate"`
}

// CurrentGame renders the active game's records. It fails with
// EmptyDataError when no game is active or no players are recorded.
func CurrentGame(sch *schema.Schema, game models.Game, players []models.Player, format Format, now time.Time) ([]byte, string, error) {
	if game.GameKey == "" || len(players) == 0 {
		return nil, "", &EmptyDataError{Scope: "current"}
	}

	filename := fmt.Sprintf("scouting_%s_%s.%s", game.Opponent, game.Date, format)

	if format == FormatCSV {
		var buf bytes.Buffer
		buf.WriteString(csvHeader)
		writeGameRows(&buf, sch, game, players)
		return buf.Bytes(), filename, nil
	}

	data, err := json.MarshalIndent(currentGameEnvelope{
		Game:       game,
		Players:    players,
		ExportDate: now,
	}, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return data, filename, nil
}

// AllGames renders every stored game. It fails with EmptyDataError when
// the store is empty.
func AllGames(sch *schema.Schema, store models.Store, format Format, now time.Time) ([]byte, string, error) {
	if len(store) == 0 {
		return nil, "", &EmptyDataError{Scope: "all"}
	}

	filename := "basketball_scouting_alle_spiele." + string(format)

	if format == FormatCSV {
		var buf bytes.Buffer
		buf.WriteString(csvHeader)
		for _, key := range sortedKeys(store) {
			rec := store[key]
			writeGameRows(&buf, sch, rec.Game, rec.Players)
		}
		return buf.Bytes(), filename, nil
	}

	data, err := json.MarshalIndent(allGamesEnvelope{
		Games:      store,
		ExportDate: now,
	}, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return data, filename, nil
}

// writeGameRows appends one CSV row per player. The average is recomputed
// at write time; stored data is never trusted to carry one. Absent ratings
// render as empty fields, not zeros. The first column repeats the opponent
// name, which is what the historical files contain.
func writeGameRows(buf *bytes.Buffer, sch *schema.Schema, game models.Game, players []models.Player) {
	for _, p := range players {
		avg := scoring.AverageScore(sch, p)
		fmt.Fprintf(buf, "%q,%q,%q,%d,%s", game.Opponent, game.Date, game.Opponent, p.Number, sizeField(p.Size))
		for _, key := range sch.ScoredKeys() {
			buf.WriteByte(',')
			if v, ok := p.Ratings[key]; ok {
				buf.WriteString(strconv.Itoa(v))
			}
		}
		fmt.Fprintf(buf, ",%.1f\n", avg)
	}
}

func sizeField(s models.Size) string {
	if s == models.SizeUnset {
		return ""
	}
	return strconv.Itoa(int(s))
}

// sortedKeys orders stored games oldest first so rows keep a stable order
// across exports.
func sortedKeys(store models.Store) []string {
	keys := make([]string, 0, len(store))
	for key := range store {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := store[keys[i]], store[keys[j]]
		if !a.LastUpdated.Equal(b.LastUpdated) {
			return a.LastUpdated.Before(b.LastUpdated)
		}
		return keys[i] < keys[j]
	})
	return keys
}
