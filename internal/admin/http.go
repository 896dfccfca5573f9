// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/natgw/natgw/internal/logging"
	"github.com/natgw/natgw/internal/stats"
)

// wsPushInterval is how often /ws pushes a fresh stats snapshot to a
// connected client.
const wsPushInterval = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is loopback-only by default (spec.md §4.L); a
	// same-origin check would reject the common case of an operator
	// port-forwarding to their workstation, so any origin is accepted.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewHTTPHandler builds the secondary HTTP surface of SPEC_FULL.md
// §4.L: `/metrics` for Prometheus scraping and `/ws` for a live stats
// feed, routed with gorilla/mux as the teacher's own admin surface does.
func NewHTTPHandler(registry *prometheus.Registry, statsFn func() stats.Snapshot, log *logging.Logger) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/ws", wsHandler(statsFn, log))
	return r
}

func wsHandler(statsFn func() stats.Snapshot, log *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ticker := time.NewTicker(wsPushInterval)
		defer ticker.Stop()

		for range ticker.C {
			data, err := json.Marshal(statsFn())
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if log != nil {
					log.Debug("admin websocket write failed", "error", err)
				}
				return
			}
		}
	}
}
