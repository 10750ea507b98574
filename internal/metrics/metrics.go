// Package metrics provides Prometheus metrics for the scouting service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the Prometheus collectors used across the service.
type Manager struct {
	registry *prometheus.Registry

	playersSaved        prometheus.Counter
	playersDeleted      prometheus.Counter
	gamesStarted        prometheus.Counter
	exports             *prometheus.CounterVec
	persistenceFailures prometheus.Counter
	validationRejects   prometheus.Counter
}

// New creates a Manager with its own registry.
func New() *Manager {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Manager{
		registry: reg,
		playersSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scoutbook",
			Name:      "players_saved_total",
			Help:      "Player records added or updated.",
		}),
		playersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scoutbook",
			Name:      "players_deleted_total",
			Help:      "Player records deleted after confirmation.",
		}),
		gamesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scoutbook",
			Name:      "games_started_total",
			Help:      "Scouting sessions started (scheduled or manual).",
		}),
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoutbook",
			Name:      "exports_total",
			Help:      "Completed exports by format and scope.",
		}, []string{"format", "scope"}),
		persistenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scoutbook",
			Name:      "persistence_failures_total",
			Help:      "Durable-store writes that failed; data stayed in memory.",
		}),
		validationRejects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scoutbook",
			Name:      "validation_rejects_total",
			Help:      "Commands rejected by validation.",
		}),
	}
}

func (m *Manager) PlayerSaved()   { m.playersSaved.Inc() }
func (m *Manager) PlayerDeleted() { m.playersDeleted.Inc() }
func (m *Manager) GameStarted()   { m.gamesStarted.Inc() }

func (m *Manager) Export(format, scope string) { m.exports.WithLabelValues(format, scope).Inc() }

func (m *Manager) PersistenceFailure() { m.persistenceFailures.Inc() }
func (m *Manager) ValidationReject()   { m.validationRejects.Inc() }

// Handler serves the /metrics endpoint for this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
