package network

import (
	"errors"
	"fmt"
)

// Action types accepted from clients.
const (
	ActionClick         = "CLICK"
	ActionLesson        = "LESSON"
	ActionChallenge     = "CHALLENGE"
	ActionStartProject  = "START_PROJECT"
	ActionCancelProject = "CANCEL_PROJECT"
	ActionHire          = "HIRE"
	ActionResearch      = "RESEARCH"
	ActionUpgradeSkill  = "UPGRADE_SKILL"
	ActionRest          = "REST"
)

// ErrUnknownAction is returned for an action type Dispatch does not route.
var ErrUnknownAction = errors.New("unknown action")

// PlayerAction represents an incoming command from a client.
type PlayerAction struct {
	Type string `json:"type"`         // "CLICK", "LESSON", "HIRE", etc.
	ID   string `json:"id,omitempty"` // catalog id the action targets, if any
}

// Actor is the set of player actions a client can trigger.
// *engine.Engine satisfies it.
type Actor interface {
	Click() error
	CompleteLesson(id string) error
	CompleteChallenge(id string) error
	StartProject(id string) error
	CancelProject() error
	HireDeveloper(roleID string) error
	ResearchTechnology(id string) error
	UpgradeSkill(id string) error
	Rest() error
}

// Dispatch routes an action to the matching engine call.
func Dispatch(a Actor, action PlayerAction) error {
	switch action.Type {
	case ActionClick:
		return a.Click()
	case ActionLesson:
		return a.CompleteLesson(action.ID)
	case ActionChallenge:
		return a.CompleteChallenge(action.ID)
	case ActionStartProject:
		return a.StartProject(action.ID)
	case ActionCancelProject:
		return a.CancelProject()
	case ActionHire:
		return a.HireDeveloper(action.ID)
	case ActionResearch:
		return a.ResearchTechnology(action.ID)
	case ActionUpgradeSkill:
		return a.UpgradeSkill(action.ID)
	case ActionRest:
		return a.Rest()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action.Type)
	}
}
