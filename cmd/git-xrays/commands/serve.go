package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jogendra123/git-xrays/internal/store"
)

// childTables maps the REST boundary's <kind> path segment to its
// backing child table (spec §6: "one endpoint per child table under
// /api/runs/{id}/<kind>").
var childTables = map[string]string{
	"hotspot":    "hotspot_files",
	"knowledge":  "knowledge_files",
	"coupling":   "coupling_pairs",
	"pain":       "file_pain",
	"anemic":     "anemic_classes",
	"godclass":   "godclass_classes",
	"complexity": "complexity_functions",
	"cluster":    "cluster_summaries",
	"drift":      "cluster_drift",
	"effort":     "effort_files",
	"dx":         "dx_cognitive_files",
}

// ServeREST starts the optional HTTP boundary over runStore: one GET
// endpoint per child table under /api/runs/{id}/<kind>, plus
// /api/compare?a=&b= (spec §6). It blocks until ctx is cancelled, then
// shuts the server down gracefully.
func ServeREST(ctx context.Context, runStore *store.Store, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/runs/", runHandler(runStore))
	mux.HandleFunc("/api/compare", compareHandler(runStore))

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)

	go func() {
		logger.InfoContext(ctx, "serving REST boundary", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve REST boundary: %w", err)
		}

		return nil
	}
}

// runHandler serves GET /api/runs/{id}/{kind}.
func runHandler(runStore *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/runs/")

		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			http.Error(w, "expected /api/runs/{id}/{kind}", http.StatusBadRequest)

			return
		}

		runID, kind := parts[0], parts[1]

		table, ok := childTables[kind]
		if !ok {
			http.Error(w, fmt.Sprintf("unknown kind %q", kind), http.StatusNotFound)

			return
		}

		if _, err := runStore.GetRun(runID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "run not found", http.StatusNotFound)
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}

			return
		}

		rows, err := runStore.QueryTable(runID, table)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		writeJSON(w, rows)
	}
}

// compareHandler serves GET /api/compare?a=&b=.
func compareHandler(runStore *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runA := r.URL.Query().Get("a")
		runB := r.URL.Query().Get("b")

		if runA == "" || runB == "" {
			http.Error(w, "expected ?a=<run-id>&b=<run-id>", http.StatusBadRequest)

			return
		}

		comparison, err := runStore.Compare(runA, runB)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}

			return
		}

		writeJSON(w, comparison)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
