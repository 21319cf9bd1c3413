package infrastructure

import (
	"context"

	"golang.org/x/sync/errgroup"
	"matchbox.io/infrastructure/logger"
	startup "matchbox.io/infrastructure/startUp"
)

type serverInterface interface {
	Start(ctx context.Context) error
}

// StartServer runs the HTTP server and, when configured, the task queue
// worker until ctx is cancelled.
func StartServer(ctx context.Context, services *startup.Services) error {
	var server serverInterface = &ginServer{cfg: services.Config, photos: services.Photos}
	group, groupCtx := errgroup.WithContext(ctx)

	if services.TaskQueue != nil {
		group.Go(func() error {
			return services.TaskQueue.Start()
		})
	}
	group.Go(func() error {
		return server.Start(groupCtx)
	})
	err := group.Wait()
	if err != nil {
		logger.Error("server stopped", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
	}
	return err
}

// StartWorker only consumes the task queue.
func StartWorker(ctx context.Context, services *startup.Services) error {
	if services.TaskQueue == nil {
		logger.Warning("no task queue configured, worker has nothing to do")
		return nil
	}
	if err := services.TaskQueue.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}
