package models

import "time"

// PremiumImage представляет премиум-изображение каталога, доступное для покупки.
// С точки зрения леджера каталог неизменяемый — только чтение.
type PremiumImage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"` // Цена в монетах
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
