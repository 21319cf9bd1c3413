package messagequeue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"matchbox.io/infrastructure/env"
	"matchbox.io/infrastructure/logger"
	asynqbroker "matchbox.io/infrastructure/message_queue/asynq"
	queue_tasks "matchbox.io/infrastructure/message_queue/tasks"
	mq_types "matchbox.io/infrastructure/message_queue/types"
	relaytypes "matchbox.io/infrastructure/relay/types"
)

// NewTaskQueue wires the task handlers. Without REDIS_ADDR there is no
// queue and failed relay cleanups are only logged.
func NewTaskQueue(cfg env.Config, relay relaytypes.Relay) mq_types.TaskQueueBroker {
	if cfg.RedisAddr == "" {
		logger.Warning("REDIS_ADDR not set, task queue disabled")
		return nil
	}
	return asynqbroker.NewAsynqBroker(cfg.RedisAddr, cfg.RedisPassword, map[mq_types.Queues]asynq.Handler{
		queue_tasks.HandleRelayCleanupTaskName: queue_tasks.NewRelayCleanupHandler(relay),
	})
}

// RelayCleanupScheduler hands failed relay deletes to the task queue.
type RelayCleanupScheduler struct {
	TaskQueue mq_types.TaskQueueBroker
}

func (s *RelayCleanupScheduler) ScheduleRelayCleanup(ctx context.Context, ref relaytypes.MessageRef) error {
	payload, err := json.Marshal(queue_tasks.RelayCleanupPayload{ChatID: ref.ChatID, MessageID: ref.MessageID})
	if err != nil {
		return err
	}
	return s.TaskQueue.Enqueue(mq_types.QueueTask{
		Name:      queue_tasks.HandleRelayCleanupTaskName,
		Payload:   payload,
		Priority:  mq_types.Low,
		ProcessIn: 30,
		MaxRetry:  5,
	})
}
