package model

import (
	"fmt"
	"strconv"
	"strings"
)

// StageExecutionID identifies one execution attempt of a stage. A stage may
// be executed more than once (e.g. after a recoverable failure), so the
// attempt id disambiguates.
type StageExecutionID struct {
	StageID int `json:"stageId"`
	ID      int `json:"id"`
}

// String returns the "stage.attempt" form used in URLs and logs.
func (s StageExecutionID) String() string {
	return fmt.Sprintf("%d.%d", s.StageID, s.ID)
}

// ParseStageExecutionID parses the "stage.attempt" form.
func ParseStageExecutionID(s string) (StageExecutionID, error) {
	stagePart, attemptPart, ok := strings.Cut(s, ".")
	if !ok {
		return StageExecutionID{}, fmt.Errorf("invalid stage execution id %q: want stage.attempt", s)
	}
	stageID, err := strconv.Atoi(stagePart)
	if err != nil {
		return StageExecutionID{}, fmt.Errorf("invalid stage id in %q: %w", s, err)
	}
	attempt, err := strconv.Atoi(attemptPart)
	if err != nil {
		return StageExecutionID{}, fmt.Errorf("invalid attempt id in %q: %w", s, err)
	}
	return StageExecutionID{StageID: stageID, ID: attempt}, nil
}
