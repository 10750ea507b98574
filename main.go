package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/opencourt/scoutbook/internal/archive"
	"github.com/opencourt/scoutbook/internal/config"
	"github.com/opencourt/scoutbook/internal/dal"
	"github.com/opencourt/scoutbook/internal/handlers"
	"github.com/opencourt/scoutbook/internal/logger"
	"github.com/opencourt/scoutbook/internal/metrics"
	"github.com/opencourt/scoutbook/internal/pubsub"
	"github.com/opencourt/scoutbook/internal/schedule"
	"github.com/opencourt/scoutbook/internal/schema"
	"github.com/opencourt/scoutbook/internal/session"
)

// assetVersion is bumped when the bundled UI assets change; it invalidates
// cached copies the way the old service worker rotated cache names.
const assetVersion = "v3"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.LogLevel)
	logger.Info("Starting Scoutbook scouting service")

	ratingSchema, err := schema.New(cfg.RatingScale)
	if err != nil {
		logger.Error("Invalid rating scale", "error", err)
		log.Fatalf("Invalid rating scale: %v", err)
	}

	league, err := schedule.Load(cfg.ScheduleFile)
	if err != nil {
		logger.Error("Failed to load schedule", "error", err, "file", cfg.ScheduleFile)
		log.Fatalf("Failed to load schedule: %v", err)
	}
	logger.Info("Schedule loaded", "league", league.LeagueName, "games", len(league.Games))

	// Initialize the persistence backend
	var dataStore dal.ScoutingDAL
	switch cfg.DBDriver {
	case "memory":
		dataStore = dal.NewMemoryDAL()
		logger.Info("Using in-memory data store")
	case "sqlite":
		dataStore, err = dal.NewSQLiteDAL(cfg.SQLiteFile)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite database", "file", cfg.SQLiteFile)
	case "postgres":
		dataStore, err = dal.NewPostgresDAL(cfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres database")
	default:
		log.Fatalf("Unknown db_driver: %s (valid: memory, sqlite, postgres)", cfg.DBDriver)
	}

	// Initialize pub/sub: embedded NATS in development, real NATS in production
	var upstream pubsub.Upstream
	if cfg.Environment == "production" {
		realNats, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			logger.Error("Failed to initialize NATS", "error", err)
			log.Fatalf("Failed to initialize NATS: %v", err)
		}
		upstream = realNats
		logger.Info("Connected to NATS", "url", cfg.NATSURL)
	} else {
		embedded, err := pubsub.NewEmbeddedNATSPubSub(pubsub.EmbeddedNATSOptions{
			Port:    -1,
			Subject: cfg.NATSSubject,
		})
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		upstream = embedded
		logger.Info("Embedded NATS server ready", "url", embedded.GetServerURL())
	}
	ps := pubsub.NewWithUpstream(upstream)

	// Optional ClickHouse archive, production only
	var archiveClient *archive.Client
	if cfg.Environment == "production" && cfg.ClickHouseAddr != "" {
		archiveClient, err = archive.NewClient(cfg.ClickHouseAddr, cfg.ClickHouseDB, cfg.ClickHouseUser, cfg.ClickHousePassword, ratingSchema)
		if err != nil {
			logger.Error("Failed to initialize ClickHouse archive", "error", err, "address", cfg.ClickHouseAddr)
			log.Fatalf("Failed to initialize ClickHouse archive: %v", err)
		}
		logger.Info("Connected to ClickHouse archive", "address", cfg.ClickHouseAddr, "database", cfg.ClickHouseDB)
	} else {
		logger.Info("ClickHouse archive disabled")
	}

	sess := session.New(dataStore, ratingSchema,
		session.WithKeyMode(session.KeyMode(cfg.GameKeyMode)),
		session.WithMinJerseyNumber(cfg.MinJerseyNumber),
	)

	// Periodic archive sync keeps ClickHouse caught up after outages
	if archiveClient != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()

			syncArchive(archiveClient, sess)
			for range ticker.C {
				syncArchive(archiveClient, sess)
			}
		}()
	}

	m := metrics.New()
	api := handlers.NewAPIHandlers(sess, league, ratingSchema, ps, m)

	mux := http.NewServeMux()

	// Static files with versioned caching
	if _, err := os.Stat(cfg.StaticDir); err == nil {
		fs := http.FileServer(http.Dir(cfg.StaticDir))
		mux.Handle("/static/", cacheControl(http.StripPrefix("/static/", fs)))
	}

	// Schedule and schema
	mux.HandleFunc("/api/schedule", api.GetSchedule)
	mux.HandleFunc("/api/schema", api.GetSchema)

	// Game selection
	mux.HandleFunc("/api/game/select", api.SelectGame)
	mux.HandleFunc("/api/game/manual", api.ManualGame)

	// Players
	mux.HandleFunc("/api/players", api.ListPlayers)
	mux.HandleFunc("/api/players/add", api.AddPlayer)
	mux.HandleFunc("/api/players/update", api.UpdatePlayer)
	mux.HandleFunc("/api/players/delete", api.DeletePlayer)

	// History and export
	mux.HandleFunc("/api/history", api.History)
	mux.HandleFunc("/api/export/current", api.ExportCurrent)
	mux.HandleFunc("/api/export/all", api.ExportAll)
	mux.HandleFunc("/api/data/clear", api.ClearData)

	// SSE for realtime updates
	mux.HandleFunc("/api/events", api.EventsSSE)

	// Metrics and health
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/api/health", healthHandler(dataStore, archiveClient))
	mux.HandleFunc("/healthz", livenessHandler)
	mux.HandleFunc("/readyz", readinessHandler(dataStore))

	logger.Info("Server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Error("Server failed", "error", err)
		log.Fatal(err)
	}
}

// cacheControl marks static assets as long-lived under the current asset
// version; bumping assetVersion changes the ETag and forces refetches.
func cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("ETag", `"`+assetVersion+`"`)
		if r.Header.Get("If-None-Match") == `"`+assetVersion+`"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// syncArchive replays the full store into ClickHouse.
func syncArchive(client *archive.Client, sess *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.SyncStore(ctx, sess.StoreSnapshot()); err != nil {
		logger.Error("Failed to sync archive", "error", err)
		return
	}
	logger.Debug("Archive synced")
}

func healthHandler(dataStore dal.ScoutingDAL, archiveClient *archive.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		httpStatus := http.StatusOK
		checks := make(map[string]interface{})

		if _, err := dataStore.Load(); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		} else {
			checks["database"] = map[string]interface{}{"status": "healthy"}
		}

		if archiveClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			if _, err := archiveClient.GameCount(ctx); err != nil {
				status = "degraded"
				httpStatus = http.StatusServiceUnavailable
				checks["clickhouse"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			} else {
				checks["clickhouse"] = map[string]interface{}{"status": "healthy"}
			}
			cancel()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    status,
			"timestamp": time.Now().Unix(),
			"checks":    checks,
		})
	}
}

// livenessHandler returns 200 if the application is running.
func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// readinessHandler returns 200 once the persistence backend answers.
func readinessHandler(dataStore dal.ScoutingDAL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := dataStore.Load(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":    "not_ready",
				"reason":    "database_unavailable",
				"timestamp": time.Now().Unix(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "ready",
			"timestamp": time.Now().Unix(),
		})
	}
}
