package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/shisha-ledger/internal/service"
)

// BalanceResponse — структура ответа с балансом пользователя.
type BalanceResponse struct {
	Balance int `json:"balance"`
}

// BalanceHandler обрабатывает запрос GET /api/balance?username=U.
// Неизвестный пользователь — 401: клиент по этому статусу разлогинивается.
func BalanceHandler(log *slog.Logger, balanceService service.BalanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.BalanceHandler"
		logger := log.With(slog.String("op", op))

		username := r.URL.Query().Get("username")
		if username == "" {
			logger.Error("username parameter is missing")
			writeError(w, logger, http.StatusBadRequest, "username is required")
			return
		}

		balance, err := balanceService.GetBalance(r.Context(), username)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				writeError(w, logger, http.StatusUnauthorized, "user not found")
				return
			}
			logger.Error("failed to get balance", slog.Any("error", err))
			writeError(w, logger, http.StatusServiceUnavailable, "storage unavailable")
			return
		}

		writeJSON(w, logger, http.StatusOK, BalanceResponse{Balance: balance})
	}
}
