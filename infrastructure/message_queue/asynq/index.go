package asynq

import (
	"time"

	"github.com/hibiken/asynq"
	"matchbox.io/infrastructure/logger"
	mq_types "matchbox.io/infrastructure/message_queue/types"
)

type AsynqBroker struct {
	Client   *asynq.Client
	Server   *asynq.Server
	Handlers map[mq_types.Queues]asynq.Handler

	redisConnOpt asynq.RedisClientOpt
}

func NewAsynqBroker(addr string, password string, handlers map[mq_types.Queues]asynq.Handler) *AsynqBroker {
	redisConnOpt := asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
	}
	return &AsynqBroker{
		Client:       asynq.NewClient(redisConnOpt),
		Handlers:     handlers,
		redisConnOpt: redisConnOpt,
	}
}

// Start runs the worker in the background until Shutdown.
func (aq *AsynqBroker) Start() error {
	aq.Server = asynq.NewServer(
		aq.redisConnOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				string(mq_types.High):   7,
				string(mq_types.Medium): 2,
				string(mq_types.Low):    1,
			},
		},
	)

	mux := asynq.NewServeMux()
	for name, handler := range aq.Handlers {
		mux.Handle(string(name), handler)
	}

	if err := aq.Server.Start(mux); err != nil {
		logger.Error("could not start task queue", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return err
	}
	logger.Info("task queue started")
	return nil
}

func (aq *AsynqBroker) Enqueue(task mq_types.QueueTask) error {
	if task.TimeOut == 0 {
		task.TimeOut = 60
	}
	if task.MaxRetry == 0 {
		task.MaxRetry = 10
	}
	if task.Priority == "" {
		task.Priority = mq_types.Medium
	}
	info, err := aq.Client.Enqueue(asynq.NewTask(string(task.Name), task.Payload),
		asynq.ProcessIn(time.Duration(task.ProcessIn)*time.Second),
		asynq.MaxRetry(task.MaxRetry),
		asynq.Timeout(time.Second*time.Duration(task.TimeOut)),
		asynq.Queue(string(task.Priority)))
	if err != nil {
		logger.Error("could not enqueue task", logger.LoggerOptions{
			Key:  "task",
			Data: task.Name,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return err
	}
	logger.Info("task enqueued", logger.LoggerOptions{
		Key:  "task",
		Data: task.Name,
	}, logger.LoggerOptions{
		Key:  "id",
		Data: info.ID,
	})
	return nil
}

func (aq *AsynqBroker) Shutdown() {
	if aq.Server != nil {
		aq.Server.Shutdown()
	}
	if aq.Client != nil {
		aq.Client.Close()
	}
}
