package engine

import (
	"errors"
	"fmt"
)

// Code is a machine-readable action failure code.
type Code string

const (
	CodeUnknown             Code = "UNKNOWN"
	CodeUnknownItem         Code = "UNKNOWN_ITEM"
	CodeInsufficientFunds   Code = "INSUFFICIENT_FUNDS"
	CodeNotEnoughEnergy     Code = "NOT_ENOUGH_ENERGY"
	CodeLevelTooLow         Code = "LEVEL_TOO_LOW"
	CodeAlreadyResearched   Code = "ALREADY_RESEARCHED"
	CodeMissingPrerequisite Code = "MISSING_PREREQUISITE"
	CodeSkillMaxed          Code = "SKILL_MAXED"
	CodeProjectInProgress   Code = "PROJECT_IN_PROGRESS"
	CodeNoActiveProject     Code = "NO_ACTIVE_PROJECT"
)

var (
	ErrUnknownItem         = errors.New("unknown catalog item")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNotEnoughEnergy     = errors.New("not enough energy")
	ErrLevelTooLow         = errors.New("level too low")
	ErrAlreadyResearched   = errors.New("technology already researched")
	ErrMissingPrerequisite = errors.New("missing prerequisite technology")
	ErrSkillMaxed          = errors.New("skill already at max level")
	ErrProjectInProgress   = errors.New("a project is already in progress")
	ErrNoActiveProject     = errors.New("no active project")
)

var codes = map[error]Code{
	ErrUnknownItem:         CodeUnknownItem,
	ErrInsufficientFunds:   CodeInsufficientFunds,
	ErrNotEnoughEnergy:     CodeNotEnoughEnergy,
	ErrLevelTooLow:         CodeLevelTooLow,
	ErrAlreadyResearched:   CodeAlreadyResearched,
	ErrMissingPrerequisite: CodeMissingPrerequisite,
	ErrSkillMaxed:          CodeSkillMaxed,
	ErrProjectInProgress:   CodeProjectInProgress,
	ErrNoActiveProject:     CodeNoActiveProject,
}

// ActionError reports a rejected player action. The state is unchanged when one is returned.
type ActionError struct {
	Action string
	Code   Code
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func actionError(action string, err error) error {
	if err == nil {
		return nil
	}
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae
	}
	code := CodeUnknown
	for sentinel, c := range codes {
		if errors.Is(err, sentinel) {
			code = c
			break
		}
	}
	return &ActionError{Action: action, Code: code, Err: err}
}

// CodeOf extracts the code from an action error, or CodeUnknown.
func CodeOf(err error) Code {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}
