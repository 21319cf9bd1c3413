package types

import (
	"context"
	"errors"
)

// ErrServiceUnavailable is returned by clients that were never configured
// (missing credentials). Callers decide through their policy what it means.
var ErrServiceUnavailable = errors.New("biometric service unavailable")

type FaceDetector interface {
	// DetectFaces returns the number of faces found in the image.
	DetectFaces(ctx context.Context, image []byte) (int, error)
}

type AuthenticityChecker interface {
	CheckAuthenticity(ctx context.Context, image []byte) (*AuthenticityResult, error)
}

type GenderClassifier interface {
	ClassifyGender(ctx context.Context, image []byte) (*GenderResult, error)
}

// AuthenticityResult flags screenshots, memes and synthetic images.
type AuthenticityResult struct {
	IsMeme     bool     `json:"isMeme"`
	Reason     string   `json:"reason,omitempty"`
	SpoofScore float64  `json:"spoofScore"`
	Labels     []string `json:"labels,omitempty"`
}

// GenderResult carries the vendor classification verbatim ("Male" / "Female").
type GenderResult struct {
	Success    bool    `json:"success"`
	Gender     string  `json:"gender,omitempty"`
	Confidence float64 `json:"confidence"`
	Error      *string `json:"error,omitempty"`
}

// vision api request / response

type VisionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type VisionImage struct {
	Content string `json:"content"`
}

type VisionRequest struct {
	Image    VisionImage     `json:"image"`
	Features []VisionFeature `json:"features"`
}

type VisionBatchRequest struct {
	Requests []VisionRequest `json:"requests"`
}

type VisionStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type FaceAnnotation struct {
	DetectionConfidence float64 `json:"detectionConfidence"`
	JoyLikelihood       string  `json:"joyLikelihood"`
}

type SafeSearchAnnotation struct {
	Adult    string `json:"adult"`
	Spoof    string `json:"spoof"`
	Medical  string `json:"medical"`
	Violence string `json:"violence"`
	Racy     string `json:"racy"`
}

type WebEntity struct {
	EntityID    string  `json:"entityId"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

type WebLabel struct {
	Label        string `json:"label"`
	LanguageCode string `json:"languageCode"`
}

type WebDetection struct {
	WebEntities     []WebEntity `json:"webEntities"`
	BestGuessLabels []WebLabel  `json:"bestGuessLabels"`
}

type VisionResponse struct {
	FaceAnnotations      []FaceAnnotation      `json:"faceAnnotations"`
	SafeSearchAnnotation *SafeSearchAnnotation `json:"safeSearchAnnotation"`
	WebDetection         *WebDetection         `json:"webDetection"`
	Error                *VisionStatus         `json:"error"`
}

type VisionBatchResponse struct {
	Responses []VisionResponse `json:"responses"`
}

// face++ detect response

type FacePPGender struct {
	Value      string   `json:"value"`
	Confidence *float64 `json:"confidence"`
}

type FacePPAttributes struct {
	Gender *FacePPGender `json:"gender"`
}

type FacePPFace struct {
	FaceToken  string            `json:"face_token"`
	Attributes *FacePPAttributes `json:"attributes"`
}

type FacePPDetectResponse struct {
	RequestID    string       `json:"request_id"`
	Faces        []FacePPFace `json:"faces"`
	FaceNum      int          `json:"face_num"`
	ErrorMessage string       `json:"error_message"`
}
