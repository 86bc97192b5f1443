package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/shisha-ledger/internal/domain/models"
	"github.com/linemk/shisha-ledger/internal/events"
	"github.com/linemk/shisha-ledger/internal/lib/metrics"
	"github.com/linemk/shisha-ledger/internal/storage"
)

// TransferService определяет интерфейс для перевода монет между пользователями.
type TransferService interface {
	SendCoins(ctx context.Context, fromUsername, toUsername string, amount int) error
}

type transferService struct {
	log          *slog.Logger
	db           *sql.DB
	accountRepo  storage.AccountStorage
	transferRepo storage.TransferStorage
	publisher    events.Publisher
}

func NewTransferService(log *slog.Logger, db *sql.DB, accountRepo storage.AccountStorage, transferRepo storage.TransferStorage, publisher events.Publisher) TransferService {
	return &transferService{
		log:          log,
		db:           db,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		publisher:    publisher,
	}
}

// SendCoins переводит монеты от одного пользователя другому.
// Списание и зачисление фиксируются одной транзакцией; перевод самому себе запрещен.
// Каждая идентифицированная попытка (успех или нехватка средств) остается в журнале переводов.
func (s *transferService) SendCoins(ctx context.Context, fromUsername, toUsername string, amount int) error {
	const op = "service.TransferService.SendCoins"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("fromUsername", fromUsername),
		slog.String("toUsername", toUsername),
		slog.Int("amount", amount),
	)
	logger.Info("starting coin transfer transaction")

	// Валидация до любых изменений состояния
	if amount <= 0 {
		metrics.OperationsTotal.WithLabelValues("transfer", "invalid_amount").Inc()
		return fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}
	if fromUsername == toUsername {
		logger.Warn("self transfer rejected")
		metrics.OperationsTotal.WithLabelValues("transfer", "self_transfer").Inc()
		return fmt.Errorf("%s: %w", op, ErrSelfTransfer)
	}

	fromID, toID, err := s.transferTx(ctx, logger, fromUsername, toUsername, amount)
	if errors.Is(err, storage.ErrRowLocked) {
		logger.Warn("account row is locked, retrying once")
		fromID, toID, err = s.transferTx(ctx, logger, fromUsername, toUsername, amount)
		if errors.Is(err, storage.ErrRowLocked) {
			metrics.OperationsTotal.WithLabelValues("transfer", "conflict").Inc()
			return fmt.Errorf("%s: %w", op, ErrConflict)
		}
	}
	metrics.OperationsTotal.WithLabelValues("transfer", outcomeLabel(err)).Inc()

	// Журнал переводов: пишем результат для всех попыток, где оба аккаунта
	// известны. Запись вне денежной транзакции, иначе откат стер бы ее.
	switch {
	case err == nil:
		s.appendAudit(ctx, logger, fromID, toID, amount, models.TransferOutcomeSuccess)
	case errors.Is(err, ErrInsufficientFunds):
		s.appendAudit(ctx, logger, fromID, toID, amount, models.TransferOutcomeInsufficientFunds)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publisher.PublishTransfer(ctx, fromUsername, toUsername, amount)

	logger.Info("coin transfer completed successfully")
	return nil
}

// transferTx выполняет один атомарный шаг перевода: блокирует оба аккаунта
// и изменяет оба баланса в одной транзакции БД. Возвращает идентификаторы
// аккаунтов для записи в журнал.
func (s *transferService) transferTx(ctx context.Context, logger *slog.Logger, fromUsername, toUsername string, amount int) (int64, int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Блокируем оба аккаунта в лексикографическом порядке имен,
	// чтобы встречные переводы не могли схватить блокировки крест-накрест.
	first, second := fromUsername, toUsername
	if first > second {
		first, second = second, first
	}

	locked := make(map[string]*models.Account, 2)
	for _, username := range []string{first, second} {
		acc, err := s.accountRepo.LockByUsernameTx(ctx, tx, username)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			if errors.Is(err, storage.ErrUserNotFound) {
				logger.Warn("account not found", slog.String("username", username))
				return 0, 0, ErrUserNotFound
			}
			if errors.Is(err, storage.ErrRowLocked) {
				return 0, 0, err
			}
			logger.Error("failed to lock account", slog.Any("error", err))
			return 0, 0, fmt.Errorf("failed to lock account: %w", err)
		}
		locked[username] = acc
	}

	sender := locked[fromUsername]
	receiver := locked[toUsername]

	// Проверяем, достаточно ли средств у отправителя
	if sender.CoinBalance < amount {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("insufficient funds", slog.Int("senderBalance", sender.CoinBalance))
		return sender.ID, receiver.ID, ErrInsufficientFunds
	}

	// Списываем монеты у отправителя
	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, sender.ID, sender.CoinBalance-amount); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update sender balance", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to update sender balance: %w", err)
	}

	// Зачисляем монеты получателю
	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, receiver.ID, receiver.CoinBalance+amount); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update receiver balance", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to update receiver balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return sender.ID, receiver.ID, nil
}

// appendAudit пишет запись в журнал переводов. Ошибка записи не меняет
// результат уже завершенной операции, только логируется.
func (s *transferService) appendAudit(ctx context.Context, logger *slog.Logger, fromID, toID int64, amount int, outcome string) {
	if err := s.transferRepo.Append(ctx, fromID, toID, amount, outcome); err != nil {
		logger.Error("failed to append transfer record", slog.Any("error", err))
	}
}
