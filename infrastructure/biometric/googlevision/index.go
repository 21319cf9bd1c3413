package googlevision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"matchbox.io/infrastructure/biometric/types"
	"matchbox.io/infrastructure/logger"
	"matchbox.io/infrastructure/network"
)

// SpoofThreshold is the score at or above which an image is treated as a spoof.
const SpoofThreshold = 0.7

var spoofScores = map[string]float64{
	"VERY_LIKELY":   0.9,
	"LIKELY":        0.7,
	"POSSIBLE":      0.5,
	"UNLIKELY":      0.3,
	"VERY_UNLIKELY": 0.1,
}

// matched case-insensitively against web best guess labels and entities
var MemeKeywords = []string{
	"meme",
	"deepfake",
	"deep fake",
	"ai generated",
	"ai-generated",
	"generated by ai",
	"ai art",
	"screenshot",
	"screen shot",
	"screen capture",
	"скриншот",
	"stable diffusion",
	"midjourney",
	"dall-e",
}

// Client talks to the Cloud Vision REST api using an api key.
type Client struct {
	Network *network.NetworkController
	APIKey  string
}

func New(baseURL string, apiKey string, net *network.NetworkController) *Client {
	if net == nil {
		net = &network.NetworkController{}
	}
	net.BaseUrl = baseURL
	return &Client{Network: net, APIKey: apiKey}
}

func (c *Client) configured() bool {
	return c != nil && c.APIKey != ""
}

// SpoofScore maps the vendor likelihood scale to a number. Unknown values
// are treated as 0.5.
func SpoofScore(likelihood string) float64 {
	if score, ok := spoofScores[strings.ToUpper(likelihood)]; ok {
		return score
	}
	return 0.5
}

func (c *Client) annotate(ctx context.Context, image []byte, features ...types.VisionFeature) (*types.VisionResponse, error) {
	if !c.configured() {
		return nil, types.ErrServiceUnavailable
	}
	body := types.VisionBatchRequest{
		Requests: []types.VisionRequest{{
			Image:    types.VisionImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: features,
		}},
	}
	response, statusCode, err := c.Network.Post(ctx, "/v1/images:annotate", nil, body, &map[string]string{
		"key": c.APIKey,
	})
	if err != nil {
		logger.Error("error calling vision annotate", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return nil, err
	}
	if statusCode == nil || *statusCode != 200 {
		logger.Error("vision annotate failed with status code", logger.LoggerOptions{
			Key:  "status_code",
			Data: statusCode,
		})
		return nil, fmt.Errorf("vision annotate returned status %v", statusCode)
	}

	var result types.VisionBatchResponse
	if err := json.Unmarshal(*response, &result); err != nil {
		logger.Error("error unmarshaling vision response", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return nil, err
	}
	if len(result.Responses) == 0 {
		return nil, errors.New("vision annotate returned no responses")
	}
	first := result.Responses[0]
	if first.Error != nil && first.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error %d: %s", first.Error.Code, first.Error.Message)
	}
	return &first, nil
}

func (c *Client) DetectFaces(ctx context.Context, image []byte) (int, error) {
	response, err := c.annotate(ctx, image, types.VisionFeature{Type: "FACE_DETECTION", MaxResults: 10})
	if err != nil {
		return 0, err
	}
	logger.Info("vision face detection completed", logger.LoggerOptions{
		Key:  "faces",
		Data: len(response.FaceAnnotations),
	})
	return len(response.FaceAnnotations), nil
}

func (c *Client) CheckAuthenticity(ctx context.Context, image []byte) (*types.AuthenticityResult, error) {
	response, err := c.annotate(ctx, image,
		types.VisionFeature{Type: "SAFE_SEARCH_DETECTION"},
		types.VisionFeature{Type: "WEB_DETECTION", MaxResults: 10},
	)
	if err != nil {
		return nil, err
	}
	return Evaluate(response), nil
}

// Evaluate applies the spoof threshold and the keyword list to an annotate response.
func Evaluate(response *types.VisionResponse) *types.AuthenticityResult {
	result := &types.AuthenticityResult{SpoofScore: 0.5}

	if response.SafeSearchAnnotation != nil {
		spoof := response.SafeSearchAnnotation.Spoof
		result.SpoofScore = SpoofScore(spoof)
		if result.SpoofScore >= SpoofThreshold {
			result.IsMeme = true
			result.Reason = fmt.Sprintf("spoof likelihood %s (score %.1f)", spoof, result.SpoofScore)
			return result
		}
	}

	if response.WebDetection != nil {
		for _, label := range response.WebDetection.BestGuessLabels {
			result.Labels = append(result.Labels, label.Label)
			if keyword := matchKeyword(label.Label); keyword != "" {
				result.IsMeme = true
				result.Reason = fmt.Sprintf("web best guess label %q matches %q", label.Label, keyword)
				return result
			}
		}
		for _, entity := range response.WebDetection.WebEntities {
			result.Labels = append(result.Labels, entity.Description)
			if keyword := matchKeyword(entity.Description); keyword != "" {
				result.IsMeme = true
				result.Reason = fmt.Sprintf("web entity %q matches %q", entity.Description, keyword)
				return result
			}
		}
	}
	return result
}

func matchKeyword(text string) string {
	lowered := strings.ToLower(text)
	if lowered == "" {
		return ""
	}
	for _, keyword := range MemeKeywords {
		if strings.Contains(lowered, keyword) {
			return keyword
		}
	}
	return ""
}
