package technotes

import (
	"context"
	"net/http"
	"time"
)

const pingTimeout = 3 * time.Second

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	status, code := "healthy", http.StatusOK
	if err := a.store.Ping(ctx); err != nil {
		a.logConnError(err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]any{
		"status":   status,
		"backend":  a.config.StoreBackend,
		"mode":     a.mode(),
		"readOnly": a.IsReadOnly(),
		"time":     time.Now().Unix(),
	})
}

// monitorStore pings the store every interval until ctx is done. Failures are
// logged; the server keeps running.
func (a *App) monitorStore(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := a.store.Ping(pingCtx)
			cancel()
			if err != nil && ctx.Err() == nil {
				a.logConnError(err)
			}
		}
	}
}

func (a *App) logConnError(err error) {
	d := a.logs.DB.LogConnError(err, a.config.storeHost())
	a.console.Warn("store connection error", "diagnostic", d.String(), "error", err)
}
