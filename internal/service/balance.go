package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/shisha-ledger/internal/lib/metrics"
	"github.com/linemk/shisha-ledger/internal/storage"
)

// BalanceService определяет интерфейс для получения баланса пользователя.
type BalanceService interface {
	GetBalance(ctx context.Context, username string) (int, error)
}

type balanceService struct {
	log             *slog.Logger
	accountRepo     storage.AccountStorage
	autoCreate      bool
	startingBalance int
}

// NewBalanceService создаёт сервис баланса. Политика для неизвестных пользователей
// задаётся конфигурацией: по умолчанию ErrUserNotFound, при autoCreate аккаунт
// создаётся со стартовым балансом.
func NewBalanceService(log *slog.Logger, accountRepo storage.AccountStorage, autoCreate bool, startingBalance int) BalanceService {
	return &balanceService{
		log:             log,
		accountRepo:     accountRepo,
		autoCreate:      autoCreate,
		startingBalance: startingBalance,
	}
}

func (s *balanceService) GetBalance(ctx context.Context, username string) (int, error) {
	const op = "service.BalanceService.GetBalance"
	logger := s.log.With(slog.String("op", op), slog.String("username", username))

	acc, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			if s.autoCreate {
				logger.Info("user not found, creating new account", slog.Int("startingBalance", s.startingBalance))
				acc, err = s.accountRepo.CreateAccount(ctx, username, s.startingBalance)
				if err != nil {
					logger.Error("failed to create account", slog.Any("error", err))
					return 0, fmt.Errorf("%s: failed to create account: %w", op, err)
				}
				metrics.OperationsTotal.WithLabelValues("balance", "success").Inc()
				return acc.CoinBalance, nil
			}
			logger.Warn("user not found")
			metrics.OperationsTotal.WithLabelValues("balance", "user_not_found").Inc()
			return 0, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		logger.Error("failed to get account", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to get account: %w", op, err)
	}

	metrics.OperationsTotal.WithLabelValues("balance", "success").Inc()
	return acc.CoinBalance, nil
}
