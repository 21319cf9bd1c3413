package facepp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"matchbox.io/infrastructure/biometric/types"
)

func TestClassifyGender(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		response       string
		wantErr        bool
		wantSuccess    bool
		wantGender     string
		wantConfidence float64
	}{
		{
			name:           "female without confidence",
			status:         http.StatusOK,
			response:       `{"faces":[{"face_token":"t","attributes":{"gender":{"value":"Female"}}}],"face_num":1}`,
			wantSuccess:    true,
			wantGender:     "Female",
			wantConfidence: 1,
		},
		{
			name:           "male with percentage confidence",
			status:         http.StatusOK,
			response:       `{"faces":[{"attributes":{"gender":{"value":"Male","confidence":95}}}],"face_num":1}`,
			wantSuccess:    true,
			wantGender:     "Male",
			wantConfidence: 0.95,
		},
		{
			name:        "no face",
			status:      http.StatusOK,
			response:    `{"faces":[],"face_num":0}`,
			wantSuccess: false,
		},
		{
			name:     "vendor error",
			status:   http.StatusBadRequest,
			response: `{"error_message":"INVALID_IMAGE_SIZE: image_base64"}`,
			wantErr:  true,
		},
		{
			name:     "malformed response",
			status:   http.StatusOK,
			response: `not json`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/facepp/v3/detect" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.FormValue("api_key") != "key" || r.FormValue("api_secret") != "secret" {
					t.Errorf("credentials missing")
				}
				if r.FormValue("return_attributes") != "gender" || r.FormValue("image_base64") == "" {
					t.Errorf("expected gender attribute request with image")
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			result, err := New(server.URL, "key", "secret", nil).ClassifyGender(context.Background(), []byte("jpeg"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if result.Success != tt.wantSuccess {
				t.Fatalf("Success = %v, want %v", result.Success, tt.wantSuccess)
			}
			if !tt.wantSuccess {
				if result.Error == nil || *result.Error != "no face" {
					t.Errorf("expected no face error, got %v", result.Error)
				}
				return
			}
			if result.Gender != tt.wantGender || result.Confidence != tt.wantConfidence {
				t.Errorf("got %s@%v, want %s@%v", result.Gender, result.Confidence, tt.wantGender, tt.wantConfidence)
			}
		})
	}
}

func TestClassifyGenderUnconfigured(t *testing.T) {
	_, err := New("https://api-us.faceplusplus.com", "", "", nil).ClassifyGender(context.Background(), []byte("jpeg"))
	if !errors.Is(err, types.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}
