package photo_usecases

import (
	"context"
	"errors"
	"time"

	"matchbox.io/application/utils"
	"matchbox.io/infrastructure/imaging"
	"matchbox.io/infrastructure/logger"
	relaytypes "matchbox.io/infrastructure/relay/types"
)

const relayCleanupTimeout = 10 * time.Second

// CleanupScheduler retries relay message deletes in the background.
type CleanupScheduler interface {
	ScheduleRelayCleanup(ctx context.Context, ref relaytypes.MessageRef) error
}

// RelayVerifier forwards uploads through the messaging relay and keeps the
// echoed copy only when it is byte-identical to what the user sent.
type RelayVerifier struct {
	Pipeline Processor
	Relay    relaytypes.Relay
	Cleanup  CleanupScheduler
}

func (v *RelayVerifier) Process(ctx context.Context, upload Upload) (*Outcome, error) {
	if len(upload.Data) == 0 {
		return nil, ErrEmptyImage
	}
	data, delivery := v.roundTrip(ctx, upload)
	// relay messages go away before the response whatever the verdict
	defer v.cleanup(delivery)

	upload.Data = data
	return v.Pipeline.Process(ctx, upload)
}

func (v *RelayVerifier) roundTrip(ctx context.Context, upload Upload) ([]byte, *relaytypes.Delivery) {
	original := upload.Data
	if v.Relay == nil {
		return original, nil
	}
	name := upload.FileName
	if name == "" {
		name = upload.UserID + ".jpg"
	}

	delivery, err := v.Relay.Send(ctx, name, original)
	if err != nil {
		if errors.Is(err, relaytypes.ErrRelayUnavailable) {
			logger.Info("relay not configured, storing upload directly")
		} else {
			logger.Warning("relay send failed, storing upload directly", logger.LoggerOptions{
				Key:  "userId",
				Data: upload.UserID,
			}, logger.LoggerOptions{
				Key:  "error",
				Data: err.Error(),
			})
		}
		return original, delivery
	}

	echoed, err := v.Relay.Fetch(ctx, delivery.FileID)
	if err != nil {
		logger.Warning("relay fetch failed, storing upload directly", logger.LoggerOptions{
			Key:  "userId",
			Data: upload.UserID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return original, delivery
	}

	originalHash, echoedHash := utils.ContentHash(original), utils.ContentHash(echoed)
	if originalHash == echoedHash {
		return echoed, delivery
	}

	options := []logger.LoggerOptions{{
		Key:  "userId",
		Data: upload.UserID,
	}, {
		Key:  "originalHash",
		Data: originalHash,
	}, {
		Key:  "relayHash",
		Data: echoedHash,
	}, {
		Key:  "originalSize",
		Data: len(original),
	}, {
		Key:  "relaySize",
		Data: len(echoed),
	}}
	if distance, err := imaging.PerceptualDistance(original, echoed); err == nil {
		options = append(options, logger.LoggerOptions{Key: "perceptualDistance", Data: distance})
	}
	logger.Warning("relay altered the file, storing the original bytes", options...)
	return original, delivery
}

func (v *RelayVerifier) cleanup(delivery *relaytypes.Delivery) {
	if delivery == nil || v.Relay == nil {
		return
	}
	// the request context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), relayCleanupTimeout)
	defer cancel()
	for _, ref := range delivery.Messages {
		err := v.Relay.Delete(ctx, ref)
		if err == nil {
			continue
		}
		logger.Warning("could not delete relay message", logger.LoggerOptions{
			Key:  "messageId",
			Data: ref.MessageID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		if v.Cleanup == nil {
			continue
		}
		if err := v.Cleanup.ScheduleRelayCleanup(ctx, ref); err != nil {
			logger.Error("could not schedule relay cleanup", logger.LoggerOptions{
				Key:  "messageId",
				Data: ref.MessageID,
			}, logger.LoggerOptions{
				Key:  "error",
				Data: err.Error(),
			})
		}
	}
}
