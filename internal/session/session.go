// Package session holds the state of one scouting sitting: the active
// game, its ordered player list, and the persistence wiring. It replaces
// the app-state singleton of the browser version with an explicit struct
// that gets its collaborators injected.
package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/opencourt/scoutbook/internal/confirm"
	"github.com/opencourt/scoutbook/internal/dal"
	"github.com/opencourt/scoutbook/internal/logger"
	"github.com/opencourt/scoutbook/internal/models"
	"github.com/opencourt/scoutbook/internal/schema"
)

// KeyMode selects how game keys are derived.
//
// Timestamped reproduces the browser version's behavior: reselecting the same
// fixture starts a fresh player set under a new key. Stable derives the
// key from the match number alone so a reselected fixture resumes its
// previously entered players.
type KeyMode string

const (
	KeyModeTimestamped KeyMode = "timestamped"
	KeyModeStable      KeyMode = "stable"
)

const maxJerseyNumber = 99

// Session is the single logical writer over the active game's records.
type Session struct {
	mu      sync.Mutex
	dal     dal.ScoutingDAL
	schema  *schema.Schema
	store   models.Store
	game    *models.Game
	players []models.Player

	now       func() time.Time
	keyMode   KeyMode
	minNumber int
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithKeyMode selects the game-key derivation strategy.
func WithKeyMode(mode KeyMode) Option {
	return func(s *Session) {
		if mode == KeyModeStable || mode == KeyModeTimestamped {
			s.keyMode = mode
		}
	}
}

// WithMinJerseyNumber lowers the jersey number floor to 0 for leagues
// that allow it.
func WithMinJerseyNumber(min int) Option {
	return func(s *Session) {
		if min == 0 || min == 1 {
			s.minNumber = min
		}
	}
}

// New builds a session and hydrates the store from the DAL. A failed read
// is never fatal: the session starts with an empty store and a warning.
func New(d dal.ScoutingDAL, sch *schema.Schema, opts ...Option) *Session {
	s := &Session{
		dal:       d,
		schema:    sch,
		now:       time.Now,
		keyMode:   KeyModeTimestamped,
		minNumber: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	store, err := d.Load()
	if err != nil {
		logger.Warn("Failed to load scouting store, starting empty", "error", err)
		store = models.Store{}
	}
	s.store = store
	return s
}

// SelectGame starts scouting a scheduled fixture. side declares which of
// the two teams is our own ("home" or "away"); the opponent is the other
// one. If the derived key already exists in the store, its player list is
// resumed.
func (s *Session) SelectGame(entry models.ScheduleEntry, side string) (models.Game, error) {
	if side != "home" && side != "away" {
		return models.Game{}, &ValidationError{Reason: "Bitte eigene Mannschaft auswählen"}
	}
	if entry.MatchNumber == "" {
		return models.Game{}, &ValidationError{Reason: "Bitte ein Spiel auswählen"}
	}

	ourTeam := entry.HomeTeam
	opponent := entry.AwayTeam
	if side == "away" {
		ourTeam, opponent = opponent, ourTeam
	}

	game := models.Game{
		ScheduleEntry: entry,
		OwnSide:       side,
		OurTeamName:   ourTeam,
		Opponent:      opponent,
		GameKey:       s.deriveKey(entry.MatchNumber),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = &game
	s.resumePlayers(game.GameKey)

	logger.Info("Scouting started", "game_key", game.GameKey, "opponent", game.Opponent, "resumed_players", len(s.players))
	return game, nil
}

// ManualGame starts scouting an ad hoc game that is not on the schedule.
// The scouting team is always treated as the home side.
func (s *Session) ManualGame(ourTeam, opponent, date string) (models.Game, error) {
	ourTeam = strings.TrimSpace(ourTeam)
	opponent = strings.TrimSpace(opponent)
	date = strings.TrimSpace(date)
	if ourTeam == "" || opponent == "" || date == "" {
		return models.Game{}, &ValidationError{Reason: "Bitte alle Felder ausfüllen"}
	}

	var marker string
	if s.keyMode == KeyModeStable {
		marker = fmt.Sprintf("manual_%s_%s", date, opponent)
	} else {
		marker = fmt.Sprintf("manual_%d", s.now().UnixMilli())
	}

	game := models.Game{
		ScheduleEntry: models.ScheduleEntry{
			MatchNumber: marker,
			Date:        date,
			Time:        "00:00",
			HomeTeam:    ourTeam,
			AwayTeam:    opponent,
			Venue:       "Manuell eingegeben",
		},
		OwnSide:     "home",
		OurTeamName: ourTeam,
		Opponent:    opponent,
		GameKey:     marker,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = &game
	s.resumePlayers(game.GameKey)

	logger.Info("Manual game started", "game_key", game.GameKey, "opponent", opponent)
	return game, nil
}

// deriveKey builds the store key for a match identifier. The timestamped
// mode makes keys intentionally non-idempotent, matching the browser version.
func (s *Session) deriveKey(matchNumber string) string {
	if s.keyMode == KeyModeStable {
		return matchNumber
	}
	return fmt.Sprintf("%s_%d", matchNumber, s.now().UnixMilli())
}

// resumePlayers hydrates the player list from a stored record, if any.
// Callers must hold s.mu.
func (s *Session) resumePlayers(key string) {
	if rec, ok := s.store[key]; ok {
		players := make([]models.Player, len(rec.Players))
		for i, p := range rec.Players {
			players[i] = p.Clone()
		}
		s.players = players
		return
	}
	s.players = nil
}

// Game returns a copy of the active game context, or false if scouting
// has not started.
func (s *Session) Game() (models.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return models.Game{}, false
	}
	return *s.game, true
}

// Players returns the current ordered player list.
func (s *Session) Players() []models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Player, len(s.players))
	for i, p := range s.players {
		out[i] = p.Clone()
	}
	return out
}

// AddPlayer validates and appends a new record, then persists. A returned
// PersistenceError means the record is live in memory but the durable
// write failed; the caller must warn the user.
func (s *Session) AddPlayer(p models.Player) (models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		return models.Player{}, &ValidationError{Reason: "Kein aktives Spiel"}
	}
	if err := s.validate(p, -1); err != nil {
		return models.Player{}, err
	}

	p = p.Clone()
	p.CreatedAt = s.now()
	p.LastUpdated = p.CreatedAt
	s.players = append(s.players, p)

	return p, s.persist()
}

// UpdatePlayer replaces the record at index after the same validation as
// AddPlayer, excluding the edited record from the duplicate check.
func (s *Session) UpdatePlayer(index int, p models.Player) (models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		return models.Player{}, &ValidationError{Reason: "Kein aktives Spiel"}
	}
	if index < 0 || index >= len(s.players) {
		return models.Player{}, &NotFoundError{Index: index}
	}
	if err := s.validate(p, index); err != nil {
		return models.Player{}, err
	}

	p = p.Clone()
	p.CreatedAt = s.players[index].CreatedAt
	p.LastUpdated = s.now()
	s.players[index] = p

	return p, s.persist()
}

// DeletePlayer removes the record at index after the confirmer affirms.
// It reports whether the record was removed.
func (s *Session) DeletePlayer(index int, c confirm.Confirmer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.players) {
		return false, &NotFoundError{Index: index}
	}

	msg := fmt.Sprintf("Möchten Sie Spieler #%d wirklich löschen?", s.players[index].Number)
	if !c.Confirm("Spieler löschen", msg) {
		return false, nil
	}

	s.players = append(s.players[:index], s.players[index+1:]...)
	return true, s.persist()
}

// validate checks the jersey number domain, the duplicate-number rule and
// the rating values. exclude is the index being edited, or -1 for adds.
func (s *Session) validate(p models.Player, exclude int) error {
	if p.Number < s.minNumber || p.Number > maxJerseyNumber {
		return &ValidationError{
			Reason: fmt.Sprintf("Bitte eine gültige Trikotnummer (%d-99) eingeben", s.minNumber),
		}
	}
	for i, existing := range s.players {
		if i != exclude && existing.Number == p.Number {
			return &ValidationError{Reason: "Diese Trikotnummer ist bereits vergeben"}
		}
	}
	if len(p.Ratings) == 0 && p.Size == models.SizeUnset {
		return &ValidationError{Reason: "Keine Bewertung ausgewählt"}
	}
	for key, value := range p.Ratings {
		if !s.schema.ValidRating(key, value) {
			return &ValidationError{Reason: fmt.Sprintf("Ungültige Bewertung für %q", key)}
		}
	}
	if p.Size < models.SizeUnset || p.Size > models.SizeTall {
		return &ValidationError{Reason: "Ungültige Größe"}
	}
	return nil
}

// persist copies the active records into the store slot and writes the
// whole store back. Callers must hold s.mu. On write failure the mutation
// stays in memory and the error is passed up for the user warning.
func (s *Session) persist() error {
	players := make([]models.Player, len(s.players))
	for i, p := range s.players {
		players[i] = p.Clone()
	}
	s.store[s.game.GameKey] = models.GameRecord{
		Game:        *s.game,
		Players:     players,
		LastUpdated: s.now(),
	}

	if err := s.dal.Save(s.store); err != nil {
		logger.Error("Failed to persist scouting store", "error", err, "game_key", s.game.GameKey)
		return err
	}
	return nil
}

// StoreSnapshot returns a deep copy of the persisted store, for exports
// and the history view.
func (s *Session) StoreSnapshot() models.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clone()
}

// History lists stored games, newest first.
func (s *Session) History() []models.GameRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]models.GameRecord, 0, len(s.store))
	for _, rec := range s.store {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastUpdated.After(records[j].LastUpdated)
	})
	return records
}

// ClearAll wipes the durable slot and resets the session after the
// confirmer affirms. It reports whether the clear happened.
func (s *Session) ClearAll(c confirm.Confirmer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := "Möchten Sie wirklich alle gespeicherten Scouting-Daten löschen? " +
		"Diese Aktion kann nicht rückgängig gemacht werden!"
	if !c.Confirm("Alle Daten löschen", msg) {
		return false, nil
	}

	err := s.dal.Clear()
	s.store = models.Store{}
	s.players = nil
	s.game = nil
	if err != nil {
		logger.Error("Failed to clear scouting store", "error", err)
		return true, err
	}
	logger.Info("All scouting data cleared")
	return true, nil
}
