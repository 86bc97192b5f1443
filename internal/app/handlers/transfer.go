package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/shisha-ledger/internal/service"
)

// TransferRequest представляет входной JSON для перевода монет.
type TransferRequest struct {
	FromUsername string `json:"from_username" validate:"required"`
	ToUsername   string `json:"to_username" validate:"required"`
	Amount       int    `json:"amount" validate:"required"`
}

// TransferResponse представляет ответ при успешном переводе.
type TransferResponse struct {
	Message string `json:"message"`
}

// TransferHandler обрабатывает запрос POST /api/transfer.
func TransferHandler(log *slog.Logger, transferService service.TransferService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.TransferHandler"
		logger := log.With(slog.String("op", op))

		var req TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "cannot parse JSON")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "validation error")
			return
		}

		err := transferService.SendCoins(r.Context(), req.FromUsername, req.ToUsername, req.Amount)
		if err != nil {
			logger.Warn("transfer failed", slog.Any("error", err))
			switch {
			case errors.Is(err, service.ErrInvalidAmount):
				writeError(w, logger, http.StatusBadRequest, "amount must be greater than zero")
			case errors.Is(err, service.ErrSelfTransfer):
				writeError(w, logger, http.StatusBadRequest, "cannot transfer coins to yourself")
			case errors.Is(err, service.ErrInsufficientFunds):
				writeError(w, logger, http.StatusBadRequest, "insufficient coins")
			case errors.Is(err, service.ErrUserNotFound):
				writeError(w, logger, http.StatusNotFound, "user not found")
			case errors.Is(err, service.ErrConflict):
				writeError(w, logger, http.StatusConflict, "conflict, please retry")
			default:
				writeError(w, logger, http.StatusServiceUnavailable, "storage unavailable")
			}
			return
		}

		writeJSON(w, logger, http.StatusOK, TransferResponse{Message: "Transfer successful"})
	}
}
