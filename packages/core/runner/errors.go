package runner

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageLoad      Stage = "load"
	StageVariables Stage = "variables"
	StageRender    Stage = "render"
	StageParse     Stage = "parse"
	StageSend      Stage = "send"
)

// StageError records which stage of an execution failed.
type StageError struct {
	Stage Stage
	File  string
	Err   error
}

func (e *StageError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s %s: %v", e.Stage, e.File, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage err failed in, or "" when err did not come
// from a runner.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
