package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by wrapped handler errors so callers can branch on the
// failure stage without string-matching messages.
const (
	codeValidationFailed = "SIGNUM_CMD_VALIDATION_FAILED"
	codeCanceled         = "SIGNUM_CMD_CANCELED"
	codeTimedOut         = "SIGNUM_CMD_TIMED_OUT"
	codeContextFailed    = "SIGNUM_CMD_CONTEXT_FAILED"
	codeExecutionFailed  = "SIGNUM_CMD_EXECUTION_FAILED"
)

// wrap normalises an error into the go-errors shape once. Errors already
// wrapped by a handler pass through untouched so the original stage survives.
func wrap(err error, category goerrors.Category, code, msg string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, msg).WithTextCode(code)
}

func wrapValidationError(err error) error {
	return wrap(err, goerrors.CategoryValidation, codeValidationFailed, "command message failed validation")
}

func wrapContextError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return wrap(err, goerrors.CategoryCommand, codeCanceled, "command canceled before completion")
	case errors.Is(err, context.DeadlineExceeded):
		return wrap(err, goerrors.CategoryCommand, codeTimedOut, "command deadline exceeded")
	default:
		return wrap(err, goerrors.CategoryCommand, codeContextFailed, "command context failed")
	}
}

func wrapExecuteError(err error) error {
	return wrap(err, goerrors.CategoryCommand, codeExecutionFailed, "command execution failed")
}
