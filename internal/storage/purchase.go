package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/shisha-ledger/internal/domain/models"
)

// ErrPurchaseExists возвращается при попытке создать вторую запись
// о покупке для той же пары (пользователь, изображение).
var ErrPurchaseExists = errors.New("purchase already exists")

// PurchaseStorage описывает методы для работы с записями о покупках.
type PurchaseStorage interface {
	// ExistsTx проверяет внутри транзакции, есть ли уже запись о покупке.
	ExistsTx(ctx context.Context, tx *sql.Tx, userID, imageID int64) (bool, error)
	// CreateTx вставляет запись о покупке. При нарушении уникальности
	// пары (user_id, image_id) возвращает ErrPurchaseExists.
	CreateTx(ctx context.Context, tx *sql.Tx, userID, imageID int64, price int) error
	// ListByUserID возвращает покупки пользователя вместе с данными изображений,
	// отсортированные по времени покупки по возрастанию.
	ListByUserID(ctx context.Context, userID int64) ([]*models.Purchase, error)
	// ListImageIDsByUserID возвращает идентификаторы купленных изображений.
	ListImageIDsByUserID(ctx context.Context, userID int64) ([]int64, error)
}

// purchaseRepository — конкретная реализация PurchaseStorage.
type purchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository создаёт новый репозиторий покупок.
func NewPurchaseRepository(db *sql.DB) PurchaseStorage {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) ExistsTx(ctx context.Context, tx *sql.Tx, userID, imageID int64) (bool, error) {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM purchases WHERE user_id = $1 AND image_id = $2)"
	if err := tx.QueryRowContext(ctx, query, userID, imageID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check purchase existence: %w", err)
	}
	return exists, nil
}

// CreateTx вставляет запись о покупке. Уникальный индекс (user_id, image_id) —
// последний рубеж против двойной покупки: проигравшая гонку транзакция
// получает 23505 и откатывается целиком, вместе со списанием.
func (r *purchaseRepository) CreateTx(ctx context.Context, tx *sql.Tx, userID, imageID int64, price int) error {
	query := `INSERT INTO purchases (user_id, image_id, price, created_at)
	          VALUES ($1, $2, $3, NOW())`
	_, err := tx.ExecContext(ctx, query, userID, imageID, price)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return ErrPurchaseExists
			}
		}
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

// ListByUserID возвращает список покупок пользователя с JOIN, чтобы получить имя и URL изображения.
func (r *purchaseRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Purchase, error) {
	query := `
		SELECT p.id, p.user_id, p.image_id, i.name, i.url, p.price, p.created_at
		FROM purchases p
		JOIN premium_images i ON p.image_id = i.id
		WHERE p.user_id = $1
		ORDER BY p.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []*models.Purchase
	for rows.Next() {
		purchase := &models.Purchase{}
		if err := rows.Scan(&purchase.ID, &purchase.UserID, &purchase.ImageID, &purchase.ImageName, &purchase.ImageURL, &purchase.Price, &purchase.CreatedAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) ListImageIDsByUserID(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT image_id FROM purchases WHERE user_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchased image ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan image id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
