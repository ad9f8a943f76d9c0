package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/emberhav/pricewatch/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	Postgres string `json:"postgres,omitempty"`
	Redis    string `json:"redis,omitempty"`
}

// Readyz probes the backing services. Postgres gates readiness; Redis
// is reported but never fails the probe because the cache degrades to
// misses when it is down.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Ready: true}

		if d.DB != nil {
			resp.Postgres = "ok"
			if err := d.DB.Ping(r.Context()); err != nil {
				resp.Ready = false
				resp.Postgres = err.Error()
			}
		}
		if d.RedisClient != nil {
			resp.Redis = "ok"
			if err := d.RedisClient.Ping(r.Context()).Err(); err != nil {
				resp.Redis = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if !resp.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
