package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // request or business failure
	ExitCommandError = 2 // bad flags or arguments
	ExitAccessDenied = 3 // login required or role too low
)

// ExitError carries the process exit code of a failed command. Its message
// has already been written by the OutputFormatter.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// GetExitCode extracts the exit code from an error. Errors that are not an
// ExitError map to ExitCommandError, since cobra returns them for flag and
// argument problems.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output, kept off stdout so JSON stays parseable
	Verbose   bool
}

// CLIResponse is the JSON output of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data as JSON, or calls text in text mode. A nil text prints
// data with fmt.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if text == nil {
		fmt.Fprintln(f.Writer, data)
		return nil
	}
	text(f.Writer)
	return nil
}

// Fail writes the error and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(exitCode int, code, message string) error {
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	} else {
		fmt.Fprintf(f.errWriter(), "Error [%s]: %s\n", code, message)
	}
	return NewExitError(exitCode, message)
}

// FailResult reports a failed session operation.
func (f *OutputFormatter) FailResult(code string, res domain.Result) error {
	msg := res.Message
	if msg == "" {
		msg = "operation failed"
	}
	return f.Fail(ExitFailure, code, msg)
}

// FailAPI reports an error returned by the REST API adapter.
func (f *OutputFormatter) FailAPI(err error) error {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return f.Fail(ExitAccessDenied, "UNAUTHORIZED", "session expired, login required")
	case errors.As(err, &apiErr):
		code := apiErr.Code
		if code == "" {
			code = "API_ERROR"
		}
		return f.Fail(ExitFailure, code, apiErr.Error())
	case errors.Is(err, domain.ErrTransport):
		return f.Fail(ExitFailure, "UNREACHABLE", err.Error())
	default:
		return f.Fail(ExitFailure, "ERROR", err.Error())
	}
}

// VerboseLog writes a diagnostic line when verbose mode is on.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
