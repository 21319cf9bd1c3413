package facepp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"matchbox.io/application/utils"
	"matchbox.io/infrastructure/biometric/types"
	"matchbox.io/infrastructure/logger"
	"matchbox.io/infrastructure/network"
)

// FacePPService classifies the apparent gender of the photo subject.
type FacePPService struct {
	Network   *network.NetworkController
	APIKey    string
	APISecret string
}

func New(baseURL string, apiKey string, apiSecret string, net *network.NetworkController) *FacePPService {
	if net == nil {
		net = &network.NetworkController{}
	}
	net.BaseUrl = baseURL
	return &FacePPService{Network: net, APIKey: apiKey, APISecret: apiSecret}
}

func (f *FacePPService) ClassifyGender(ctx context.Context, image []byte) (*types.GenderResult, error) {
	if f == nil || f.APIKey == "" || f.APISecret == "" {
		return nil, types.ErrServiceUnavailable
	}
	response, statusCode, err := f.Network.PostForm(ctx, "/facepp/v3/detect", map[string]string{
		"api_key":           f.APIKey,
		"api_secret":        f.APISecret,
		"image_base64":      base64.StdEncoding.EncodeToString(image),
		"return_attributes": "gender",
	})
	if err != nil {
		logger.Error("error performing gender classification on face++", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return nil, err
	}

	var detect types.FacePPDetectResponse
	if err := json.Unmarshal(*response, &detect); err != nil {
		logger.Error("error parsing face++ detect response", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return nil, err
	}
	if statusCode == nil || *statusCode != 200 {
		logger.Error("face++ detect failed with status code", logger.LoggerOptions{
			Key:  "status_code",
			Data: statusCode,
		}, logger.LoggerOptions{
			Key:  "error_message",
			Data: detect.ErrorMessage,
		})
		return nil, fmt.Errorf("face++ detect returned status %v: %s", statusCode, detect.ErrorMessage)
	}

	if len(detect.Faces) == 0 || detect.Faces[0].Attributes == nil || detect.Faces[0].Attributes.Gender == nil {
		return &types.GenderResult{
			Success: false,
			Error:   utils.GetStringPointer("no face"),
		}, nil
	}

	gender := detect.Faces[0].Attributes.Gender
	result := &types.GenderResult{
		Success:    true,
		Gender:     gender.Value,
		Confidence: normaliseConfidence(gender.Confidence),
	}
	logger.Info("gender classification completed by face++", logger.LoggerOptions{
		Key:  "gender",
		Data: result.Gender,
	}, logger.LoggerOptions{
		Key:  "confidence",
		Data: result.Confidence,
	})
	return result, nil
}

// face++ reports percentages when it reports a confidence at all; an
// unqualified classification counts as certain.
func normaliseConfidence(confidence *float64) float64 {
	if confidence == nil {
		return 1
	}
	if *confidence > 1 {
		return *confidence / 100
	}
	return *confidence
}
