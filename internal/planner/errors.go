package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrPlanGeneration matches every *GenerationError.
	ErrPlanGeneration = errors.New("plan generation failed")
	// ErrSwap matches every *SwapError.
	ErrSwap = errors.New("meal swap failed")
)

// Failure stages of a generation call.
const (
	StageRequest  = "request"
	StageParse    = "parse"
	StageValidate = "validate"
)

// GenerationError is the single failure of a plan generation call. No partial
// plan is returned with it.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("plan generation failed (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrPlanGeneration }

// SwapError is the failure of a meal swap call. The original meal must stay in
// place when it is returned.
type SwapError struct {
	Stage string
	Err   error
}

func (e *SwapError) Error() string {
	return fmt.Sprintf("meal swap failed (%s): %v", e.Stage, e.Err)
}

func (e *SwapError) Unwrap() error { return e.Err }

func (e *SwapError) Is(target error) bool { return target == ErrSwap }
