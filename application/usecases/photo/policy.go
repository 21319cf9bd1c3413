package photo_usecases

import "fmt"

// Action decides what a failed moderation call means for the upload.
type Action string

const (
	// ActionSkip lets the upload through without marking the face as verified.
	ActionSkip Action = "skip"
	// ActionReject turns the failure into a moderation rejection (400).
	ActionReject Action = "reject"
	// ActionFail surfaces the failure as an upstream error (500/503).
	ActionFail Action = "fail"
)

const (
	CheckFace         = "face"
	CheckAuthenticity = "authenticity"
	CheckGender       = "gender"
)

type CheckPolicy struct {
	OnUnavailable Action
	OnError       Action
}

type Policies struct {
	Face         CheckPolicy
	Authenticity CheckPolicy
	Gender       CheckPolicy
}

func DefaultPolicies() Policies {
	return Policies{
		Face:         CheckPolicy{OnUnavailable: ActionSkip, OnError: ActionReject},
		Authenticity: CheckPolicy{OnUnavailable: ActionSkip, OnError: ActionSkip},
		Gender:       CheckPolicy{OnUnavailable: ActionFail, OnError: ActionFail},
	}
}

func parseAction(value string) (Action, error) {
	switch Action(value) {
	case ActionSkip, ActionReject, ActionFail:
		return Action(value), nil
	}
	return "", fmt.Errorf("unknown check action %q, expected skip, reject or fail", value)
}

// ParsePolicies applies overrides keyed by check name and then "unavailable"
// or "error" on top of the defaults.
func ParsePolicies(overrides map[string]map[string]string) (Policies, error) {
	policies := DefaultPolicies()
	targets := map[string]*CheckPolicy{
		CheckFace:         &policies.Face,
		CheckAuthenticity: &policies.Authenticity,
		CheckGender:       &policies.Gender,
	}
	for check, values := range overrides {
		target, ok := targets[check]
		if !ok {
			return policies, fmt.Errorf("unknown check %q", check)
		}
		for kind, value := range values {
			action, err := parseAction(value)
			if err != nil {
				return policies, fmt.Errorf("%s on %s: %w", check, kind, err)
			}
			switch kind {
			case "unavailable":
				target.OnUnavailable = action
			case "error":
				target.OnError = action
			default:
				return policies, fmt.Errorf("unknown policy key %q for %s", kind, check)
			}
		}
	}
	return policies, nil
}

func (p Policies) For(check string) CheckPolicy {
	switch check {
	case CheckFace:
		return p.Face
	case CheckAuthenticity:
		return p.Authenticity
	default:
		return p.Gender
	}
}
