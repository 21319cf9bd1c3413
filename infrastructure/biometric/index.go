package biometric

import (
	"net/http"

	"matchbox.io/infrastructure/biometric/facepp"
	"matchbox.io/infrastructure/biometric/googlevision"
	"matchbox.io/infrastructure/biometric/types"
	"matchbox.io/infrastructure/env"
	"matchbox.io/infrastructure/logger"
	"matchbox.io/infrastructure/network"
)

// Services groups the vendor clients used by photo moderation.
type Services struct {
	Faces        types.FaceDetector
	Authenticity types.AuthenticityChecker
	Gender       types.GenderClassifier
}

func InitialiseBiometricServices(cfg env.Config) *Services {
	client := &http.Client{}
	vision := googlevision.New(cfg.VisionBaseURL, cfg.VisionAPIKey, &network.NetworkController{
		Client:  client,
		Timeout: cfg.ExternalCallTimeout,
	})
	gender := facepp.New(cfg.FacePPBaseURL, cfg.FacePPAPIKey, cfg.FacePPAPISecret, &network.NetworkController{
		Client:  client,
		Timeout: cfg.ExternalCallTimeout,
	})
	if cfg.VisionAPIKey == "" {
		logger.Warning("GOOGLE_VISION_API_KEY not set, face and authenticity checks will be skipped")
	}
	if cfg.FacePPAPIKey == "" || cfg.FacePPAPISecret == "" {
		logger.Warning("FACEPP_API_KEY / FACEPP_API_SECRET not set, gender check unavailable")
	}
	return &Services{
		Faces:        vision,
		Authenticity: vision,
		Gender:       gender,
	}
}
