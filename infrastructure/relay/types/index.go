package types

import (
	"context"
	"errors"
)

var ErrRelayUnavailable = errors.New("relay is not configured")

type MessageRef struct {
	ChatID    int64 `json:"chatId"`
	MessageID int   `json:"messageId"`
}

// Delivery is what the relay echoed back for one send.
type Delivery struct {
	FileID   string
	Messages []MessageRef
}

// Relay round-trips a file through a messaging channel.
type Relay interface {
	Send(ctx context.Context, name string, data []byte) (*Delivery, error)
	Fetch(ctx context.Context, fileID string) ([]byte, error)
	Delete(ctx context.Context, ref MessageRef) error
}
