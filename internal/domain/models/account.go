package models

// Account представляет аккаунт пользователя с балансом монет
type Account struct {
	ID          int64  // Уникальный идентификатор
	Username    string // Имя пользователя (уникальное)
	CoinBalance int    // Баланс в монетах, всегда >= 0
}
