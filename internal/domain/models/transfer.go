package models

import "time"

// Результаты попытки перевода, которые пишутся в журнал.
const (
	TransferOutcomeSuccess           = "success"
	TransferOutcomeInsufficientFunds = "insufficient_funds"
)

// Transfer представляет запись журнала переводов.
// Журнал append-only: запись создается при каждой попытке перевода,
// независимо от результата, и никогда не изменяется.
type Transfer struct {
	ID         int64     `json:"id"`
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	Amount     int       `json:"amount"`
	Outcome    string    `json:"outcome"` // например, "success" или "insufficient_funds"
	CreatedAt  time.Time `json:"created_at"`
}
