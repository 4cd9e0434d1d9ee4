package service

import (
	"errors"
	"fmt"
)

// IntakeStage names the step of fragment intake that failed.
type IntakeStage string

const (
	StagePolicy  IntakeStage = "policy"
	StageSession IntakeStage = "session"
	StageInsert  IntakeStage = "insert"
)

// IntakeError is returned by ProcessFragment. It keeps the failing stage and
// the underlying domain error for callers; Error() is the text shown to the
// frontend.
type IntakeError struct {
	Stage IntakeStage
	Err   error
	// Reason is the policy's explanation for a blocked fragment.
	Reason string
}

func (e *IntakeError) Error() string {
	switch e.Stage {
	case StagePolicy:
		if e.Reason != "" {
			return "Fragment rejected: " + e.Reason
		}
		return fmt.Sprintf("Fragment rejected: %v", e.Err)
	case StageSession:
		return fmt.Sprintf("Failed to get/create session: %v", e.Err)
	default:
		return fmt.Sprintf("Failed to save message: %v", e.Err)
	}
}

func (e *IntakeError) Unwrap() error {
	return e.Err
}

// IntakeStageOf returns the stage of an intake failure, or "" when err did
// not come from intake.
func IntakeStageOf(err error) IntakeStage {
	var intakeErr *IntakeError
	if errors.As(err, &intakeErr) {
		return intakeErr.Stage
	}
	return ""
}
