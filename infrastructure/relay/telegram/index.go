package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"matchbox.io/infrastructure/logger"
	"matchbox.io/infrastructure/network"
	"matchbox.io/infrastructure/relay/types"
)

// Bot is the subset of the bot api used by the relay.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// TelegramRelay sends uploads as documents to a private chat so telegram
// does not recompress them, then downloads the stored copy.
type TelegramRelay struct {
	Bot      Bot
	ChatID   int64
	Network  *network.NetworkController
	MaxBytes int64
}

func New(bot Bot, chatID int64, net *network.NetworkController, maxBytes int64) *TelegramRelay {
	if net == nil {
		net = &network.NetworkController{}
	}
	return &TelegramRelay{Bot: bot, ChatID: chatID, Network: net, MaxBytes: maxBytes}
}

func (t *TelegramRelay) configured() bool {
	return t != nil && t.Bot != nil && t.ChatID != 0
}

func (t *TelegramRelay) Send(ctx context.Context, name string, data []byte) (*types.Delivery, error) {
	if !t.configured() {
		return nil, types.ErrRelayUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	document := tgbotapi.NewDocument(t.ChatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	document.DisableNotification = true
	message, err := t.Bot.Send(document)
	if err != nil {
		logger.Error("error sending file to relay chat", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return nil, err
	}
	chatID := t.ChatID
	if message.Chat != nil {
		chatID = message.Chat.ID
	}
	delivery := &types.Delivery{
		Messages: []types.MessageRef{{ChatID: chatID, MessageID: message.MessageID}},
	}
	switch {
	case message.Document != nil:
		delivery.FileID = message.Document.FileID
	case len(message.Photo) > 0:
		delivery.FileID = message.Photo[len(message.Photo)-1].FileID
	default:
		return delivery, fmt.Errorf("relay message %d carries no file", message.MessageID)
	}
	return delivery, nil
}

func (t *TelegramRelay) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	if !t.configured() {
		return nil, types.ErrRelayUnavailable
	}
	fileURL, err := t.Bot.GetFileDirectURL(fileID)
	if err != nil {
		logger.Error("error resolving relay file url", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return nil, err
	}
	response, statusCode, err := t.Network.Get(ctx, fileURL, t.MaxBytes)
	if err != nil {
		return nil, err
	}
	if statusCode == nil || *statusCode != 200 {
		return nil, fmt.Errorf("relay file download returned status %v", statusCode)
	}
	return *response, nil
}

func (t *TelegramRelay) Delete(ctx context.Context, ref types.MessageRef) error {
	if !t.configured() {
		return types.ErrRelayUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.Bot.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		logger.Error("error deleting relay message", logger.LoggerOptions{
			Key:  "messageId",
			Data: ref.MessageID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return err
	}
	return nil
}
