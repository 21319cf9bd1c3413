package photo_usecases

import (
	"context"
	"errors"
	"testing"

	"matchbox.io/entities"
	"matchbox.io/infrastructure/biometric/types"
)

func TestParsePolicies(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]map[string]string
		want      Policies
		wantErr   bool
	}{
		{
			name:      "defaults",
			overrides: map[string]map[string]string{"face": {}},
			want:      DefaultPolicies(),
		},
		{
			name:      "gender fails open",
			overrides: map[string]map[string]string{"gender": {"unavailable": "skip", "error": "skip"}},
			want: Policies{
				Face:         DefaultPolicies().Face,
				Authenticity: DefaultPolicies().Authenticity,
				Gender:       CheckPolicy{OnUnavailable: ActionSkip, OnError: ActionSkip},
			},
		},
		{
			name:      "unknown action",
			overrides: map[string]map[string]string{"face": {"error": "ignore"}},
			wantErr:   true,
		},
		{
			name:      "unknown check",
			overrides: map[string]map[string]string{"age": {"error": "skip"}},
			wantErr:   true,
		},
		{
			name:      "unknown key",
			overrides: map[string]map[string]string{"face": {"timeout": "skip"}},
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePolicies(tt.overrides)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPolicyTableAppliesUniformly(t *testing.T) {
	tests := []struct {
		name    string
		policy  func(p *Policies)
		setup   func(h *harness)
		wantErr func(err error) bool
	}{
		{
			name:   "face unavailable can fail",
			policy: func(p *Policies) { p.Face.OnUnavailable = ActionFail },
			setup:  func(h *harness) { h.faces.err = types.ErrServiceUnavailable },
			wantErr: func(err error) bool {
				var serviceErr *ServiceError
				return errors.As(err, &serviceErr) && serviceErr.Unavailable
			},
		},
		{
			name:   "authenticity error can reject",
			policy: func(p *Policies) { p.Authenticity.OnError = ActionReject },
			setup:  func(h *harness) { h.authenticity.err = errVendor },
			wantErr: func(err error) bool {
				var rejection *RejectionError
				return errors.As(err, &rejection) && rejection.Check == CheckAuthenticity
			},
		},
		{
			name:    "gender error can be skipped",
			policy:  func(p *Policies) { p.Gender.OnError = ActionSkip },
			setup:   func(h *harness) { h.gender.err = errVendor },
			wantErr: func(err error) bool { return err == nil },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, newUser("42", entities.GenderFemale))
			tt.policy(&h.pipeline.Policies)
			tt.setup(h)
			_, err := h.pipeline.Process(context.Background(), Upload{UserID: "42", Data: jpegBytes(t, 1, 90)})
			if !tt.wantErr(err) {
				t.Errorf("unexpected result %v", err)
			}
		})
	}
}

func TestDeclaredMaleClassifiedFemaleRejects(t *testing.T) {
	for _, confidence := range []float64{0, 0.3, 0.99} {
		h := newHarness(t, newUser("7", entities.GenderMale))
		h.gender.result = &types.GenderResult{Success: true, Gender: "Female", Confidence: confidence}
		_, err := h.pipeline.Process(context.Background(), Upload{UserID: "7", Data: jpegBytes(t, 1, 90)})
		var rejection *RejectionError
		if !errors.As(err, &rejection) || rejection.Check != CheckGender {
			t.Errorf("confidence %v: expected gender rejection, got %v", confidence, err)
		}
	}
}
