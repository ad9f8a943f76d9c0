package handlers

import (
	"net/http"

	"github.com/emberhav/pricewatch/internal/httpserver/deps"
)

// TriggerScan handles POST /api/scan. The trigger never blocks: if a
// scan is already queued or running the request is acknowledged as
// already pending.
func TriggerScan(d deps.Deps) http.HandlerFunc {
	return trigger(d.ScanTrigger, "scan")
}

// TriggerSweep handles POST /api/sweep.
func TriggerSweep(d deps.Deps) http.HandlerFunc {
	return trigger(d.SweepTrigger, "sweep")
}

func trigger(ch chan struct{}, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ch == nil {
			writeError(w, http.StatusServiceUnavailable, name+" trigger unavailable")
			return
		}
		select {
		case ch <- struct{}{}:
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
		default:
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "already pending"})
		}
	}
}
