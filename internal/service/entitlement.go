package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/linemk/shisha-ledger/internal/storage"
)

// EntitlementService определяет интерфейс для чтения купленных изображений.
// Только чтение: оба метода смотрят на одни и те же зафиксированные записи о покупках.
type EntitlementService interface {
	// ListPurchased возвращает купленные изображения, отсортированные
	// по времени покупки по возрастанию.
	ListPurchased(ctx context.Context, username string) ([]PurchasedImage, error)
	// ListPurchasedIDs возвращает идентификаторы купленных изображений
	// в виде строк (их использует каталог для пометки купленного).
	ListPurchasedIDs(ctx context.Context, username string) ([]string, error)
}

// PurchasedImage — элемент ответа со списком покупок.
type PurchasedImage struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	URL     string    `json:"url"`
	BuyTime time.Time `json:"buytime"`
}

type entitlementService struct {
	log          *slog.Logger
	accountRepo  storage.AccountStorage
	purchaseRepo storage.PurchaseStorage
}

func NewEntitlementService(log *slog.Logger, accountRepo storage.AccountStorage, purchaseRepo storage.PurchaseStorage) EntitlementService {
	return &entitlementService{
		log:          log,
		accountRepo:  accountRepo,
		purchaseRepo: purchaseRepo,
	}
}

func (s *entitlementService) ListPurchased(ctx context.Context, username string) ([]PurchasedImage, error) {
	const op = "service.EntitlementService.ListPurchased"
	logger := s.log.With(slog.String("op", op), slog.String("username", username))

	acc, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		// Неизвестный пользователь ничего не покупал: пустой список, не ошибка
		if errors.Is(err, storage.ErrUserNotFound) {
			return []PurchasedImage{}, nil
		}
		logger.Error("failed to get account", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get account: %w", op, err)
	}

	purchases, err := s.purchaseRepo.ListByUserID(ctx, acc.ID)
	if err != nil {
		logger.Error("failed to list purchases", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list purchases: %w", op, err)
	}

	images := make([]PurchasedImage, 0, len(purchases))
	for _, p := range purchases {
		images = append(images, PurchasedImage{
			ID:      p.ImageID,
			Name:    p.ImageName,
			URL:     p.ImageURL,
			BuyTime: p.CreatedAt,
		})
	}
	return images, nil
}

func (s *entitlementService) ListPurchasedIDs(ctx context.Context, username string) ([]string, error) {
	const op = "service.EntitlementService.ListPurchasedIDs"
	logger := s.log.With(slog.String("op", op), slog.String("username", username))

	acc, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return []string{}, nil
		}
		logger.Error("failed to get account", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get account: %w", op, err)
	}

	ids, err := s.purchaseRepo.ListImageIDsByUserID(ctx, acc.ID)
	if err != nil {
		logger.Error("failed to list image ids", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list image ids: %w", op, err)
	}

	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, strconv.FormatInt(id, 10))
	}
	return result, nil
}
