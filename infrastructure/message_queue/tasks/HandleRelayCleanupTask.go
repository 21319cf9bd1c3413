package queue_tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"matchbox.io/infrastructure/logger"
	mq_types "matchbox.io/infrastructure/message_queue/types"
	relaytypes "matchbox.io/infrastructure/relay/types"
)

var HandleRelayCleanupTaskName mq_types.Queues = "relay:delete_message"

type RelayCleanupPayload struct {
	ChatID    int64 `json:"chatId"`
	MessageID int   `json:"messageId"`
}

// NewRelayCleanupHandler retries deletes of relay messages left behind by
// uploads. Returning an error hands the task back to asynq for a retry.
func NewRelayCleanupHandler(relay relaytypes.Relay) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RelayCleanupPayload
		err := json.Unmarshal(t.Payload(), &payload)
		if err != nil {
			logger.Error("an error occured while unmarshalling relay cleanup queue payload", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		err = relay.Delete(ctx, relaytypes.MessageRef{ChatID: payload.ChatID, MessageID: payload.MessageID})
		if errors.Is(err, relaytypes.ErrRelayUnavailable) {
			logger.Warning("relay cleanup dropped, relay not configured", logger.LoggerOptions{
				Key:  "payload",
				Data: payload,
			})
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		if err != nil {
			return err
		}
		logger.Info("relay message deleted by queue", logger.LoggerOptions{
			Key:  "payload",
			Data: payload,
		})
		return nil
	}
}
