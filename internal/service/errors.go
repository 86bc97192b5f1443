package service

import "errors"

// Доменные ошибки леджера. Транспортный слой отображает их в HTTP-статусы,
// ни одна ошибка не гасится молча.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrImageNotFound     = errors.New("image not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyPurchased  = errors.New("image already purchased")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrSelfTransfer      = errors.New("cannot transfer coins to yourself")
	// ErrConflict — конкурирующая запись не разрешилась за один повтор
	ErrConflict = errors.New("concurrent update conflict")
)

// outcomeLabel переводит результат операции в метку для метрик.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrImageNotFound):
		return "image_not_found"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrAlreadyPurchased):
		return "already_purchased"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
