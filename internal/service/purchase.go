package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/shisha-ledger/internal/events"
	"github.com/linemk/shisha-ledger/internal/lib/metrics"
	"github.com/linemk/shisha-ledger/internal/storage"
)

// PurchaseService определяет интерфейс для покупки премиум-изображения.
type PurchaseService interface {
	// Purchase списывает цену изображения и создаёт запись о покупке
	// ровно один раз. Возвращает новый баланс пользователя.
	Purchase(ctx context.Context, username string, imageID int64) (int, error)
}

type purchaseService struct {
	log          *slog.Logger
	db           *sql.DB
	accountRepo  storage.AccountStorage
	catalogRepo  storage.CatalogStorage
	purchaseRepo storage.PurchaseStorage
	publisher    events.Publisher
}

func NewPurchaseService(log *slog.Logger, db *sql.DB, accountRepo storage.AccountStorage, catalogRepo storage.CatalogStorage, purchaseRepo storage.PurchaseStorage, publisher events.Publisher) PurchaseService {
	return &purchaseService{
		log:          log,
		db:           db,
		accountRepo:  accountRepo,
		catalogRepo:  catalogRepo,
		purchaseRepo: purchaseRepo,
		publisher:    publisher,
	}
}

// Purchase осуществляет покупку изображения.
// Списание и запись о покупке фиксируются одной транзакцией: либо обе, либо ни одной.
// При блокировке строки аккаунта атомарный шаг повторяется один раз, затем ErrConflict.
func (s *purchaseService) Purchase(ctx context.Context, username string, imageID int64) (int, error) {
	const op = "service.PurchaseService.Purchase"
	logger := s.log.With(slog.String("op", op), slog.String("username", username), slog.Int64("imageID", imageID))
	logger.Info("starting purchase transaction")

	newBalance, price, err := s.purchaseTx(ctx, logger, username, imageID)
	if errors.Is(err, storage.ErrRowLocked) {
		logger.Warn("account row is locked, retrying once")
		newBalance, price, err = s.purchaseTx(ctx, logger, username, imageID)
		if errors.Is(err, storage.ErrRowLocked) {
			metrics.OperationsTotal.WithLabelValues("purchase", "conflict").Inc()
			return 0, fmt.Errorf("%s: %w", op, ErrConflict)
		}
	}
	metrics.OperationsTotal.WithLabelValues("purchase", outcomeLabel(err)).Inc()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	// Событие публикуется только после фиксации транзакции
	s.publisher.PublishBuy(ctx, username, imageID, price)

	logger.Info("purchase completed successfully", slog.Int("newBalance", newBalance))
	return newBalance, nil
}

// purchaseTx выполняет один атомарный шаг покупки в рамках одной транзакции БД.
func (s *purchaseService) purchaseTx(ctx context.Context, logger *slog.Logger, username string, imageID int64) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Блокируем строку аккаунта на всю транзакцию: проверка баланса,
	// списание и запись о покупке идут под одной блокировкой.
	acc, err := s.accountRepo.LockByUsernameTx(ctx, tx, username)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrUserNotFound) {
			return 0, 0, ErrUserNotFound
		}
		if errors.Is(err, storage.ErrRowLocked) {
			return 0, 0, err
		}
		logger.Error("failed to lock account", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to lock account: %w", err)
	}

	// Получаем изображение через транзакцию
	image, err := s.catalogRepo.GetImageByIDTx(ctx, tx, imageID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrImageNotFound) {
			return 0, 0, ErrImageNotFound
		}
		logger.Error("failed to get image", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to get image: %w", err)
	}

	// Проверяем, не куплено ли изображение ранее
	exists, err := s.purchaseRepo.ExistsTx(ctx, tx, acc.ID, imageID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to check purchase", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to check purchase: %w", err)
	}
	if exists {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("image already purchased")
		return 0, 0, ErrAlreadyPurchased
	}

	// Проверяем, достаточно ли средств
	if acc.CoinBalance < image.Price {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("insufficient funds", slog.Int("balance", acc.CoinBalance), slog.Int("price", image.Price))
		return 0, 0, ErrInsufficientFunds
	}

	// Списываем цену с баланса
	newBalance := acc.CoinBalance - image.Price
	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, acc.ID, newBalance); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update balance", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to update balance: %w", err)
	}

	// Создаем запись о покупке. Уникальный индекс (user_id, image_id)
	// гарантирует, что из двух гонящихся покупок зафиксируется ровно одна.
	if err := s.purchaseRepo.CreateTx(ctx, tx, acc.ID, imageID, image.Price); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrPurchaseExists) {
			logger.Warn("concurrent purchase detected")
			return 0, 0, ErrAlreadyPurchased
		}
		logger.Error("failed to create purchase", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to create purchase: %w", err)
	}

	// Коммит транзакции
	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, image.Price, nil
}
