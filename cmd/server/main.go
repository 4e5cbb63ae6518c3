package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	_ "github.com/mattn/go-sqlite3"

	"github.com/maturitylab/compass/internal/api"
	"github.com/maturitylab/compass/internal/db"
	"github.com/maturitylab/compass/internal/middleware"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	if err := api.SeedDefaultCatalog(store); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	mux := http.NewServeMux()
	api.NewRouter(store, cfg.AdminEmails).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "Compass API",
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})

	handler := middleware.CORS(middleware.SecureHeaders(middleware.NoStore(middleware.WithAuth(mux))))

	log.Printf("Compass server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore picks SQLite when a path is configured and falls back to the
// in-process store otherwise.
func openStore(cfg Config) (api.Store, error) {
	if cfg.SQLitePath == "" {
		log.Printf("COMPASS_SQLITE_PATH not set, using in-memory store")
		return api.NewMemoryStore(), nil
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", cfg.SQLitePath)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.RunMigrations(conn, cfg.MigrationsDir); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	store, err := db.NewSQLiteStore(conn)
	if err != nil {
		return nil, err
	}
	log.Printf("using sqlite store at %s", cfg.SQLitePath)
	return store, nil
}
