package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// TransferStorage описывает методы для работы с журналом переводов.
type TransferStorage interface {
	// Append добавляет запись о попытке перевода. Журнал append-only,
	// запись делается вне денежной транзакции, чтобы неудачные попытки
	// тоже оставались в журнале после отката.
	Append(ctx context.Context, fromUserID, toUserID int64, amount int, outcome string) error
}

type transferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) TransferStorage {
	return &transferRepository{db: db}
}

func (r *transferRepository) Append(ctx context.Context, fromUserID, toUserID int64, amount int, outcome string) error {
	query := `INSERT INTO transfers (from_user_id, to_user_id, amount, outcome, created_at)
	          VALUES ($1, $2, $3, $4, NOW())`
	_, err := r.db.ExecContext(ctx, query, fromUserID, toUserID, amount, outcome)
	if err != nil {
		return fmt.Errorf("failed to append transfer record: %w", err)
	}
	return nil
}
