package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/nats-io/nats.go"
)

// LiveHandler обрабатывает GET /live — процесс жив.
func LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

// ReadyHandler обрабатывает GET /ready: проверяет соединение с БД
// и, если настроен, статус NATS. nc может быть nil.
func ReadyHandler(log *slog.Logger, db *sql.DB, nc *nats.Conn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ReadyHandler"
		logger := log.With(slog.String("op", op))

		if err := db.PingContext(r.Context()); err != nil {
			logger.Error("database is not ready", slog.Any("error", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if nc != nil && !nc.IsConnected() {
			logger.Error("nats is not connected")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
