package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/mlorenzatti/turnero-campus/internal/metrics"
)

type HTTPServer struct {
	srv *http.Server
}

// StartHTTP levanta la superficie operativa (salud y métricas) y, si se le
// pasa un API, el adaptador JSON sobre los servicios de dominio.
func StartHTTP(ctx context.Context, addr string, db *sql.DB, api *API) *HTTPServer {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveDBPing(time.Since(t0))
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())

	if api != nil {
		api.Mount(mux)
	}

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		_ = srv.ListenAndServe()
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}
