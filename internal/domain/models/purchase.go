package models

import "time"

// Purchase представляет факт покупки изображения пользователем.
// Пара (UserID, ImageID) уникальна: пользователь может купить изображение один раз.
type Purchase struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ImageID   int64     `json:"image_id"`
	ImageName string    `json:"image_name"` // Имя изображения; заполняется через JOIN с таблицей premium_images
	ImageURL  string    `json:"image_url"`
	Price     int       `json:"price"` // Уплаченная цена
	CreatedAt time.Time `json:"created_at"`
}
