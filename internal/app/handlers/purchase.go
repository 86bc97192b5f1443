package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/shisha-ledger/internal/service"
)

// PurchaseRequest представляет входной JSON для покупки изображения.
type PurchaseRequest struct {
	ImageID  int64  `json:"image_id" validate:"required,gt=0"`
	UserName string `json:"user_name" validate:"required"`
}

// PurchaseResponse представляет ответ при успешной покупке.
type PurchaseResponse struct {
	Message string `json:"message"`
	Balance int    `json:"balance"`
}

// PurchaseHandler обрабатывает запрос POST /api/purchase.
func PurchaseHandler(log *slog.Logger, purchaseService service.PurchaseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PurchaseHandler"
		logger := log.With(slog.String("op", op))

		var req PurchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "cannot parse JSON")
			return
		}

		// Валидация структуры запроса с использованием validator
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "validation error")
			return
		}

		balance, err := purchaseService.Purchase(r.Context(), req.UserName, req.ImageID)
		if err != nil {
			logger.Warn("purchase failed", slog.Any("error", err))
			switch {
			case errors.Is(err, service.ErrAlreadyPurchased):
				writeError(w, logger, http.StatusConflict, "you have already purchased this image")
			case errors.Is(err, service.ErrImageNotFound):
				writeError(w, logger, http.StatusNotFound, "image not found")
			case errors.Is(err, service.ErrUserNotFound):
				writeError(w, logger, http.StatusNotFound, "user not found")
			case errors.Is(err, service.ErrInsufficientFunds):
				writeError(w, logger, http.StatusBadRequest, "insufficient coins")
			case errors.Is(err, service.ErrConflict):
				writeError(w, logger, http.StatusConflict, "conflict, please retry")
			default:
				writeError(w, logger, http.StatusServiceUnavailable, "storage unavailable")
			}
			return
		}

		resp := PurchaseResponse{Message: "Image purchased successfully", Balance: balance}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}
