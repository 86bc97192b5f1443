package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/shisha-ledger/internal/domain/models"
)

var ErrImageNotFound = errors.New("image not found")

// CatalogStorage описывает методы для чтения каталога премиум-изображений.
// Каталог для леджера read-only: никаких методов записи здесь нет.
type CatalogStorage interface {
	// GetImageByIDTx получает изображение по идентификатору внутри транзакции,
	// чтобы цена читалась из того же снимка, что и баланс.
	GetImageByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.PremiumImage, error)
}

// catalogRepository — конкретная реализация интерфейса CatalogStorage.
type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository создаёт новый репозиторий каталога.
func NewCatalogRepository(db *sql.DB) CatalogStorage {
	return &catalogRepository{db: db}
}

// GetImageByIDTx ищет изображение по id в таблице premium_images.
func (r *catalogRepository) GetImageByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.PremiumImage, error) {
	image := &models.PremiumImage{}
	query := "SELECT id, name, price, url FROM premium_images WHERE id = $1"
	row := tx.QueryRowContext(ctx, query, id)
	if err := row.Scan(&image.ID, &image.Name, &image.Price, &image.URL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return image, nil
}
