package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// BuyMessage — событие покупки изображения.
type BuyMessage struct {
	User    string `json:"user"`
	Type    string `json:"type"`
	ImageID int64  `json:"image_id"`
	Amount  int    `json:"amount"`
}

// TransferMessage — событие перевода монет.
type TransferMessage struct {
	User   string `json:"user"`
	Type   string `json:"type"`
	Target string `json:"target"`
	Amount int    `json:"amount"`
}

// Publisher публикует события леджера после фиксации транзакции.
// Публикация best-effort: ошибки логируются, но не влияют на результат операции.
type Publisher interface {
	PublishBuy(ctx context.Context, user string, imageID int64, amount int)
	PublishTransfer(ctx context.Context, from, to string, amount int)
}

type natsPublisher struct {
	log     *slog.Logger
	nc      *nats.Conn
	subject string
}

// NewNatsPublisher создаёт издателя событий поверх NATS-соединения.
func NewNatsPublisher(log *slog.Logger, nc *nats.Conn, subject string) Publisher {
	return &natsPublisher{log: log, nc: nc, subject: subject}
}

func (p *natsPublisher) PublishBuy(ctx context.Context, user string, imageID int64, amount int) {
	msg := BuyMessage{User: user, Type: "buy", ImageID: imageID, Amount: amount}
	p.publish(msg)
}

func (p *natsPublisher) PublishTransfer(ctx context.Context, from, to string, amount int) {
	msg := TransferMessage{User: from, Type: "transfer", Target: to, Amount: amount}
	p.publish(msg)
}

func (p *natsPublisher) publish(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("failed to marshal event", slog.Any("error", err))
		return
	}
	if err := p.nc.Publish(p.subject, b); err != nil {
		p.log.Error("failed to publish event", slog.Any("error", err))
	}
}

// noopPublisher используется, когда NATS не настроен (например, в тестах).
type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishBuy(ctx context.Context, user string, imageID int64, amount int) {}

func (noopPublisher) PublishTransfer(ctx context.Context, from, to string, amount int) {}
