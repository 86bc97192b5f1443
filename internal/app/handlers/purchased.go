package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/shisha-ledger/internal/service"
)

// PurchasedHandler обрабатывает запрос GET /api/purchased/{username}.
// Возвращает купленные изображения по возрастанию времени покупки;
// если покупок нет — пустой массив, не ошибка.
func PurchasedHandler(log *slog.Logger, entitlementService service.EntitlementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PurchasedHandler"
		logger := log.With(slog.String("op", op))

		username := chi.URLParam(r, "username")
		if username == "" {
			logger.Error("username parameter is missing")
			writeError(w, logger, http.StatusBadRequest, "username is required")
			return
		}

		images, err := entitlementService.ListPurchased(r.Context(), username)
		if err != nil {
			logger.Error("failed to list purchased images", slog.Any("error", err))
			writeError(w, logger, http.StatusServiceUnavailable, "storage unavailable")
			return
		}

		writeJSON(w, logger, http.StatusOK, images)
	}
}

// PurchasedIDsHandler обрабатывает запрос GET /api/purchased/ids/{username}.
func PurchasedIDsHandler(log *slog.Logger, entitlementService service.EntitlementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PurchasedIDsHandler"
		logger := log.With(slog.String("op", op))

		username := chi.URLParam(r, "username")
		if username == "" {
			logger.Error("username parameter is missing")
			writeError(w, logger, http.StatusBadRequest, "username is required")
			return
		}

		ids, err := entitlementService.ListPurchasedIDs(r.Context(), username)
		if err != nil {
			logger.Error("failed to list purchased image ids", slog.Any("error", err))
			writeError(w, logger, http.StatusServiceUnavailable, "storage unavailable")
			return
		}

		writeJSON(w, logger, http.StatusOK, ids)
	}
}
