package relay

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"matchbox.io/infrastructure/env"
	"matchbox.io/infrastructure/logger"
	"matchbox.io/infrastructure/network"
	"matchbox.io/infrastructure/relay/telegram"
	"matchbox.io/infrastructure/relay/types"
)

// InitialiseRelay connects the bot used for round-trip verification. Without
// a token or chat the relay stays unconfigured and uploads go direct.
func InitialiseRelay(cfg env.Config) types.Relay {
	client := &http.Client{Timeout: cfg.ExternalCallTimeout}
	net := &network.NetworkController{Client: client, Timeout: cfg.ExternalCallTimeout}
	if cfg.BotToken == "" || cfg.RelayChatID == 0 {
		logger.Warning("BOT_TOKEN / RELAY_CHAT_ID not set, relay verification disabled")
		return telegram.New(nil, 0, net, cfg.MaxUploadBytes)
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		logger.Error("could not connect relay bot", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return telegram.New(nil, 0, net, cfg.MaxUploadBytes)
	}
	logger.Info("relay bot connected", logger.LoggerOptions{
		Key:  "bot",
		Data: bot.Self.UserName,
	})
	return telegram.New(bot, cfg.RelayChatID, net, cfg.MaxUploadBytes)
}
