// Package errdef carries the coded errors returned across package
// boundaries. The code names the pipeline stage that failed.
package errdef

import (
	stdErrors "errors"
	"fmt"
	"strings"
)

type Code string

const (
	CodeUnknown    Code = "unknown"
	CodeAnswers    Code = "answers"
	CodePrompt     Code = "prompt"
	CodePlan       Code = "plan"
	CodeTemplate   Code = "template"
	CodeFilesystem Code = "filesystem"
	CodePublish    Code = "publish"
	CodeInstall    Code = "install"
	CodeSettings   Code = "settings"
	CodeHistory    Code = "history"
	CodeUI         Code = "ui"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error renders "code: message: cause", omitting empty parts.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	parts := []string{string(e.Code)}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Wrap tags err with code and an optional message. A nil err stays nil.
func Wrap(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return build(code, err, format, args)
}

// New creates a coded error without a cause.
func New(code Code, format string, args ...any) error {
	return build(code, nil, format, args)
}

func build(code Code, cause error, format string, args []any) *Error {
	if code == "" {
		code = CodeUnknown
	}
	msg := format
	if format != "" && len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Code: code, Message: msg, Err: cause}
}

// CodeOf returns the outermost code in the chain.
func CodeOf(err error) Code {
	if e, ok := first(err); ok {
		return e.Code
	}
	return CodeUnknown
}

// Is reports whether any coded error in the chain carries code.
func Is(err error, code Code) bool {
	for {
		e, ok := first(err)
		if !ok {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
}

func first(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if !stdErrors.As(err, &e) {
		return nil, false
	}
	return e, true
}

// Message is err.Error() or empty for nil.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
