package models

import "time"

// Size is the informational player size attribute. It is displayed
// alongside the ratings but never counts toward the average score.
type Size int

const (
	SizeUnset  Size = 0
	SizeSmall  Size = 1
	SizeNormal Size = 2
	SizeTall   Size = 3
)

// Label returns the German display label used by the exports.
func (s Size) Label() string {
	switch s {
	case SizeSmall:
		return "klein"
	case SizeNormal:
		return "normal"
	case SizeTall:
		return "groß"
	default:
		return ""
	}
}

// ScheduleEntry is one fixture from the league schedule. The JSON tags
// match the federation export format the schedule file is delivered in.
type ScheduleEntry struct {
	MatchNumber string `json:"spiel_nr"`
	Date        string `json:"datum"`
	Time        string `json:"uhrzeit"`
	HomeTeam    string `json:"heimmannschaft"`
	AwayTeam    string `json:"gastmannschaft"`
	Venue       string `json:"spielhalle"`
}

// Game is the active scouting context: a schedule entry (or manual entry)
// plus the side the scouting team plays on and the derived names.
// GameKey scopes the player set in the persisted store and is assigned
// exactly once when scouting starts.
type Game struct {
	ScheduleEntry
	OwnSide     string `json:"ownTeam"` // "home" or "away"
	OurTeamName string `json:"ourTeamName"`
	Opponent    string `json:"opponent"`
	GameKey     string `json:"gameId"`
}

// Player is one scouted opponent player. Ratings maps category keys to
// scores; a missing key means the category was not rated.
type Player struct {
	Number      int            `json:"number"`
	Size        Size           `json:"groesse,omitempty"`
	Ratings     map[string]int `json:"ratings,omitempty"`
	CreatedAt   time.Time      `json:"createdAt,omitzero"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// Clone returns a deep copy so callers cannot mutate stored ratings.
func (p Player) Clone() Player {
	out := p
	if p.Ratings != nil {
		out.Ratings = make(map[string]int, len(p.Ratings))
		for k, v := range p.Ratings {
			out.Ratings[k] = v
		}
	}
	return out
}

// GameRecord is the per-game slot in the persisted store.
type GameRecord struct {
	Game        Game      `json:"game"`
	Players     []Player  `json:"players"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Store is the full persisted state, keyed by game key. It is read once
// at startup and written back wholesale after every mutation.
type Store map[string]GameRecord

// Clone deep-copies the store.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for key, rec := range s {
		players := make([]Player, len(rec.Players))
		for i, p := range rec.Players {
			players[i] = p.Clone()
		}
		rec.Players = players
		out[key] = rec
	}
	return out
}

// PlayerCount sums players across all stored games.
func (s Store) PlayerCount() int {
	n := 0
	for _, rec := range s {
		n += len(rec.Players)
	}
	return n
}
