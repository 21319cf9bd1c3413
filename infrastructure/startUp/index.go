package startup

import (
	"context"
	"fmt"

	"matchbox.io/application/controller"
	"matchbox.io/application/repository"
	photo_usecases "matchbox.io/application/usecases/photo"
	"matchbox.io/infrastructure/biometric"
	"matchbox.io/infrastructure/database"
	"matchbox.io/infrastructure/database/connection"
	"matchbox.io/infrastructure/database/connection/datastore"
	mongorepo "matchbox.io/infrastructure/database/repository/mongo"
	"matchbox.io/infrastructure/database/repository/relational"
	"matchbox.io/infrastructure/env"
	"matchbox.io/infrastructure/imaging"
	"matchbox.io/infrastructure/locker"
	"matchbox.io/infrastructure/logger"
	messagequeue "matchbox.io/infrastructure/message_queue"
	mq_types "matchbox.io/infrastructure/message_queue/types"
	"matchbox.io/infrastructure/network"
	"matchbox.io/infrastructure/photostore"
	"matchbox.io/infrastructure/relay"
	relaytypes "matchbox.io/infrastructure/relay/types"
)

// Services is everything the server, the worker and the CLI share.
type Services struct {
	Config      env.Config
	Connections *connection.Connections
	Users       repository.UserRepository
	Relay       relaytypes.Relay
	TaskQueue   mq_types.TaskQueueBroker
	Pipeline    *photo_usecases.Pipeline
	Verifier    *photo_usecases.RelayVerifier
	Photos      *controller.PhotoController
}

// StartServices connects the stores and vendors and builds the use cases.
func StartServices(ctx context.Context, cfg env.Config) (*Services, error) {
	policies, err := photo_usecases.ParsePolicies(cfg.PolicyOverrides)
	if err != nil {
		return nil, err
	}

	conns, err := database.SetUpDatabase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	services := &Services{Config: cfg, Connections: conns}
	if conns.Mongo != nil {
		services.Users = mongorepo.NewUserRepository(conns.Mongo.Collection(datastore.UserCollection))
	} else {
		services.Users = relational.NewUserRepository(conns.SQL)
	}

	var userLocker locker.Locker = locker.NewLocalLocker()
	if cfg.LockBackend == "redis" {
		if conns.Redis == nil {
			services.CleanUp(ctx)
			return nil, fmt.Errorf("LOCK_BACKEND=redis requires REDIS_ADDR")
		}
		userLocker = locker.NewRedisLocker(conns.Redis)
	}

	vendors := biometric.InitialiseBiometricServices(cfg)
	services.Relay = relay.InitialiseRelay(cfg)
	services.TaskQueue = messagequeue.NewTaskQueue(cfg, services.Relay)

	services.Pipeline = &photo_usecases.Pipeline{
		Users:        services.Users,
		Store:        photostore.New(cfg.ImagesRoot),
		Normalizer:   imaging.NewNormalizer(cfg.JPEGQuality),
		Faces:        vendors.Faces,
		Authenticity: vendors.Authenticity,
		Gender:       vendors.Gender,
		Locker:       userLocker,
		Fetcher: &network.NetworkController{
			Client:  network.NewPublicClient(),
			Timeout: cfg.ExternalCallTimeout,
		},
		Policies:            policies,
		GenderMinConfidence: cfg.GenderMinConfidence,
		MaxDownloadBytes:    cfg.MaxUploadBytes,
	}
	services.Verifier = &photo_usecases.RelayVerifier{
		Pipeline: services.Pipeline,
		Relay:    services.Relay,
	}
	if services.TaskQueue != nil {
		services.Verifier.Cleanup = &messagequeue.RelayCleanupScheduler{TaskQueue: services.TaskQueue}
	}
	services.Photos = controller.NewPhotoController(services.Pipeline, services.Verifier)

	logger.Info("services started", logger.LoggerOptions{
		Key:  "dbDriver",
		Data: cfg.DBDriver,
	}, logger.LoggerOptions{
		Key:  "lockBackend",
		Data: cfg.LockBackend,
	}, logger.LoggerOptions{
		Key:  "imagesRoot",
		Data: cfg.ImagesRoot,
	})
	return services, nil
}

// CleanUp releases what StartServices opened.
func (s *Services) CleanUp(ctx context.Context) {
	if s.TaskQueue != nil {
		s.TaskQueue.Shutdown()
	}
	if s.Connections != nil {
		s.Connections.Close(ctx)
	}
	logger.Sync()
}
