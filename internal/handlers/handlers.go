package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/opencourt/scoutbook/internal/confirm"
	"github.com/opencourt/scoutbook/internal/dal"
	"github.com/opencourt/scoutbook/internal/export"
	"github.com/opencourt/scoutbook/internal/logger"
	"github.com/opencourt/scoutbook/internal/metrics"
	"github.com/opencourt/scoutbook/internal/models"
	"github.com/opencourt/scoutbook/internal/pubsub"
	"github.com/opencourt/scoutbook/internal/schedule"
	"github.com/opencourt/scoutbook/internal/schema"
	"github.com/opencourt/scoutbook/internal/scoring"
	"github.com/opencourt/scoutbook/internal/session"
)

// persistWarning is shown when a mutation succeeded in memory but the
// durable write failed.
const persistWarning = "Änderung konnte nicht gespeichert werden und geht beim Neuladen möglicherweise verloren"

// APIHandlers contains all API handler methods.
type APIHandlers struct {
	session *session.Session
	league  *schedule.League
	schema  *schema.Schema
	pubsub  *pubsub.PubSub
	metrics *metrics.Manager
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(s *session.Session, league *schedule.League, sch *schema.Schema, ps *pubsub.PubSub, m *metrics.Manager) *APIHandlers {
	return &APIHandlers{
		session: s,
		league:  league,
		schema:  sch,
		pubsub:  ps,
		metrics: m,
	}
}

// GetSchedule returns the fixture list games are selected from.
func (h *APIHandlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.league)
}

// GetSchema returns the rating categories for the capture form.
func (h *APIHandlers) GetSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"scale":      h.schema.Scale(),
		"categories": h.schema.Categories(),
	})
}

// SelectGame starts scouting a scheduled fixture.
func (h *APIHandlers) SelectGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		MatchNumber string `json:"matchNumber"`
		Side        string `json:"side"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, ok := h.league.Find(req.MatchNumber)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown match number %q", req.MatchNumber), http.StatusNotFound)
		return
	}

	game, err := h.session.SelectGame(entry, req.Side)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.metrics.GameStarted()
	h.pubsub.Publish(pubsub.NewEvent(pubsub.EventGameSelect, map[string]interface{}{
		"gameKey":  game.GameKey,
		"opponent": game.Opponent,
	}))

	writeJSON(w, game)
}

// ManualGame starts scouting an ad hoc game.
func (h *APIHandlers) ManualGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		OurTeam  string `json:"ourTeam"`
		Opponent string `json:"opponent"`
		Date     string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	game, err := h.session.ManualGame(req.OurTeam, req.Opponent, req.Date)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.metrics.GameStarted()
	h.pubsub.Publish(pubsub.NewEvent(pubsub.EventGameSelect, map[string]interface{}{
		"gameKey":  game.GameKey,
		"opponent": game.Opponent,
	}))

	writeJSON(w, game)
}

// playerView is a player plus the display fields the overview renders.
type playerView struct {
	Index        int           `json:"index"`
	Player       models.Player `json:"player"`
	AverageScore float64       `json:"averageScore"`
	Band         scoring.Band  `json:"band"`
	SizeLabel    string        `json:"sizeLabel,omitempty"`
}

// ListPlayers returns the active game's players with computed averages.
func (h *APIHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players := h.session.Players()
	views := make([]playerView, len(players))
	for i, p := range players {
		avg := scoring.AverageScore(h.schema, p)
		views[i] = playerView{
			Index:        i,
			Player:       p,
			AverageScore: avg,
			Band:         scoring.Classify(h.schema, avg),
			SizeLabel:    p.Size.Label(),
		}
	}
	writeJSON(w, views)
}

// saveResponse carries a saved player back to the client, with a warning
// when the durable write failed.
type saveResponse struct {
	Player       models.Player `json:"player"`
	AverageScore float64       `json:"averageScore"`
	Band         scoring.Band  `json:"band"`
	Warning      string        `json:"warning,omitempty"`
}

// AddPlayer adds a new player record to the active game.
func (h *APIHandlers) AddPlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var player models.Player
	if err := json.NewDecoder(r.Body).Decode(&player); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.session.AddPlayer(player)
	warning, fatal := h.persistOutcome(err)
	if fatal != nil {
		h.writeError(w, fatal)
		return
	}

	h.metrics.PlayerSaved()
	h.pubsub.Publish(pubsub.NewEvent(pubsub.EventPlayerAdd, map[string]interface{}{
		"number": saved.Number,
	}))

	avg := scoring.AverageScore(h.schema, saved)
	writeJSON(w, saveResponse{
		Player:       saved,
		AverageScore: avg,
		Band:         scoring.Classify(h.schema, avg),
		Warning:      warning,
	})
}

// UpdatePlayer replaces the record at the given index.
func (h *APIHandlers) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Index  int           `json:"index"`
		Player models.Player `json:"player"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := h.session.UpdatePlayer(req.Index, req.Player)
	warning, fatal := h.persistOutcome(err)
	if fatal != nil {
		h.writeError(w, fatal)
		return
	}

	h.metrics.PlayerSaved()
	h.pubsub.Publish(pubsub.NewEvent(pubsub.EventPlayerUpdate, map[string]interface{}{
		"index":  req.Index,
		"number": saved.Number,
	}))

	avg := scoring.AverageScore(h.schema, saved)
	writeJSON(w, saveResponse{
		Player:       saved,
		AverageScore: avg,
		Band:         scoring.Classify(h.schema, avg),
		Warning:      warning,
	})
}

// DeletePlayer removes the record at the given index. The client runs the
// confirmation dialog and sends confirmed=true on an affirmative answer.
func (h *APIHandlers) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Index     int  `json:"index"`
		Confirmed bool `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	confirmer := confirm.Func(func(title, message string) bool { return req.Confirmed })
	deleted, err := h.session.DeletePlayer(req.Index, confirmer)
	warning, fatal := h.persistOutcome(err)
	if fatal != nil {
		h.writeError(w, fatal)
		return
	}

	if deleted {
		h.metrics.PlayerDeleted()
		h.pubsub.Publish(pubsub.NewEvent(pubsub.EventPlayerDelete, map[string]interface{}{
			"index": req.Index,
		}))
	}

	writeJSON(w, map[string]interface{}{
		"deleted": deleted,
		"warning": warning,
	})
}

// historyEntry summarizes one stored game for the history view.
type historyEntry struct {
	Game        models.Game `json:"game"`
	PlayerCount int         `json:"playerCount"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// History lists stored games, newest first.
func (h *APIHandlers) History(w http.ResponseWriter, r *http.Request) {
	records := h.session.History()
	entries := make([]historyEntry, len(records))
	for i, rec := range records {
		entries[i] = historyEntry{
			Game:        rec.Game,
			PlayerCount: len(rec.Players),
			LastUpdated: rec.LastUpdated,
		}
	}
	writeJSON(w, entries)
}

// ExportCurrent downloads the active game's records as JSON or CSV.
func (h *APIHandlers) ExportCurrent(w http.ResponseWriter, r *http.Request) {
	format, err := parseFormat(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	game, _ := h.session.Game()
	data, filename, err := export.CurrentGame(h.schema, game, h.session.Players(), format, time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.metrics.Export(string(format), "current")
	h.pubsub.Publish(pubsub.NewEvent(pubsub.EventExport, map[string]interface{}{
		"scope":  "current",
		"format": string(format),
	}))

	writeDownload(w, data, filename, format)
}

// ExportAll downloads every stored game as JSON or CSV.
func (h *APIHandlers) ExportAll(w http.ResponseWriter, r *http.Request) {
	format, err := parseFormat(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, filename, err := export.AllGames(h.schema, h.session.StoreSnapshot(), format, time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.metrics.Export(string(format), "all")
	h.pubsub.Publish(pubsub.NewEvent(pubsub.EventExport, map[string]interface{}{
		"scope":  "all",
		"format": string(format),
	}))

	writeDownload(w, data, filename, format)
}

// ClearData wipes the whole store after client-side confirmation.
func (h *APIHandlers) ClearData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	confirmer := confirm.Func(func(title, message string) bool { return req.Confirmed })
	cleared, err := h.session.ClearAll(confirmer)
	warning, fatal := h.persistOutcome(err)
	if fatal != nil {
		h.writeError(w, fatal)
		return
	}

	if cleared {
		h.pubsub.Publish(pubsub.NewEvent(pubsub.EventDataClear, nil))
	}

	writeJSON(w, map[string]interface{}{
		"cleared": cleared,
		"warning": warning,
	})
}

// EventsSSE provides Server-Sent Events for realtime updates.
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case event := <-eventChan:
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-time.After(30 * time.Second):
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

// persistOutcome splits a mutation error into the persistence warning
// (mutation applied, durable write failed) and everything else.
func (h *APIHandlers) persistOutcome(err error) (warning string, fatal error) {
	if err == nil {
		return "", nil
	}
	var pe *dal.PersistenceError
	if errors.As(err, &pe) {
		h.metrics.PersistenceFailure()
		logger.Warn("Mutation kept in memory only", "error", err)
		return persistWarning, nil
	}
	return "", err
}

// writeError maps core error kinds onto HTTP status codes.
func (h *APIHandlers) writeError(w http.ResponseWriter, err error) {
	var (
		ve *session.ValidationError
		nf *session.NotFoundError
		ee *export.EmptyDataError
	)
	switch {
	case errors.As(err, &ve):
		h.metrics.ValidationReject()
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &nf):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &ee):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error("Request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseFormat(r *http.Request) (export.Format, error) {
	switch r.URL.Query().Get("format") {
	case "json", "":
		return export.FormatJSON, nil
	case "csv":
		return export.FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q", r.URL.Query().Get("format"))
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeDownload(w http.ResponseWriter, data []byte, filename string, format export.Format) {
	contentType := "application/json"
	if format == export.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}
