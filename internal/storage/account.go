package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/shisha-ledger/internal/domain/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrRowLocked возвращается, когда строка аккаунта заблокирована конкурирующей транзакцией
	ErrRowLocked = errors.New("row is locked")
)

// AccountStorage описывает методы для работы с аккаунтами пользователей.
type AccountStorage interface {
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	CreateAccount(ctx context.Context, username string, balance int) (*models.Account, error)
	// LockByUsernameTx читает аккаунт с блокировкой строки (FOR UPDATE NOWAIT).
	// Все изменения балансов проходят только через такую блокировку.
	LockByUsernameTx(ctx context.Context, tx *sql.Tx, username string) (*models.Account, error)
	UpdateBalanceTx(ctx context.Context, tx *sql.Tx, id int64, newBalance int) error
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *accountRepository {
	return &accountRepository{db: db}
}

// получение уже существующего аккаунта
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	acc := &models.Account{}
	row := r.db.QueryRowContext(ctx, "SELECT id, username, coin_balance FROM users WHERE username = $1", username)
	if err := row.Scan(&acc.ID, &acc.Username, &acc.CoinBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return acc, nil
}

func (r *accountRepository) CreateAccount(ctx context.Context, username string, balance int) (*models.Account, error) {
	acc := &models.Account{Username: username, CoinBalance: balance}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (username, coin_balance) VALUES ($1, $2) RETURNING id",
		username, balance,
	).Scan(&acc.ID)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// LockByUsernameTx блокирует строку аккаунта до конца транзакции.
// NOWAIT: при конкурирующей блокировке не ждем, а сразу возвращаем ErrRowLocked,
// решение о повторе принимает вызывающий слой.
func (r *accountRepository) LockByUsernameTx(ctx context.Context, tx *sql.Tx, username string) (*models.Account, error) {
	acc := &models.Account{}

	row := tx.QueryRowContext(ctx, "SELECT id, username, coin_balance FROM users WHERE username = $1 FOR UPDATE NOWAIT", username)
	if err := row.Scan(&acc.ID, &acc.Username, &acc.CoinBalance); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock_not_available
				return nil, fmt.Errorf("account %q: %w", username, ErrRowLocked)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return acc, nil
}

func (r *accountRepository) UpdateBalanceTx(ctx context.Context, tx *sql.Tx, id int64, newBalance int) error {
	res, err := tx.ExecContext(ctx, "UPDATE users SET coin_balance = $1 WHERE id = $2", newBalance, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
