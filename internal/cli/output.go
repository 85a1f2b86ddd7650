package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/sakif/hikelog/internal/apperror"
	"github.com/sakif/hikelog/internal/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // command completed (including a declined confirmation)
	ExitFailure      = 1 // operation failed: not found, integrity, storage
	ExitCommandError = 2 // bad usage, invalid input or configuration
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error // optional
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

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Validation errors count as
// bad input; anything else unclassified is an operation failure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, apperror.ErrValidation) {
		return ExitCommandError
	}
	return ExitFailure
}

// errorCode is the machine-readable kind used in json/yaml error output.
func errorCode(err error) string {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return "validation_error"
	case errors.Is(err, apperror.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperror.ErrIntegrity):
		return "integrity_violation"
	case GetExitCode(err) == ExitCommandError:
		return "usage_error"
	default:
		return "internal_error"
	}
}

// OutputFormatter renders command results as text, json or yaml.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // prompts and diagnostics; keeps json/yaml on Writer clean
	Verbose   bool
}

// CLIResponse is the envelope for json and yaml output.
type CLIResponse struct {
	Status string    `json:"status"          yaml:"status"`
	Data   any       `json:"data,omitempty"  yaml:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty" yaml:"error,omitempty"`
}

// CLIError is the error part of CLIResponse.
type CLIError struct {
	Code    string `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Success renders data. Text output knows the hike log types; anything
// else is printed with fmt.
func (f *OutputFormatter) Success(data any) error {
	if f.Format != "text" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	switch v := data.(type) {
	case []model.Hike:
		return writeHikeTable(f.Writer, v)
	case *model.Hike:
		return writeHikeDetail(f.Writer, v)
	case []model.Observation:
		return writeObservationTable(f.Writer, v)
	case *model.Observation:
		return writeObservationDetail(f.Writer, v)
	default:
		_, err := fmt.Fprintln(f.Writer, v)
		return err
	}
}

// Done reports a completed action: message in text mode, data otherwise.
func (f *OutputFormatter) Done(message string, data any) error {
	if f.Format == "text" {
		_, err := fmt.Fprintln(f.Writer, message)
		return err
	}
	return f.encode(CLIResponse{Status: "ok", Data: data})
}

// Error renders err. json and yaml errors go to Writer so a script reading
// stdout always gets one document; text errors go to ErrWriter.
func (f *OutputFormatter) Error(err error) error {
	if f.Format == "text" {
		_, werr := fmt.Fprintf(f.errWriter(), "Error: %v\n", err)
		return werr
	}
	return f.encode(CLIResponse{
		Status: "error",
		Error:  &CLIError{Code: errorCode(err), Message: err.Error()},
	})
}

// VerboseLog prints to ErrWriter only with --verbose.
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

func (f *OutputFormatter) encode(v any) error {
	switch f.Format {
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// =========================================================================
// TEXT RENDERING
// =========================================================================

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeHikeTable(w io.Writer, hikes []model.Hike) error {
	if len(hikes) == 0 {
		_, err := fmt.Fprintln(w, "No hikes found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tDATE\tDISTANCE\tDIFFICULTY")
	for _, h := range hikes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s km\t%s\n",
			h.ID, h.Name, h.Location, h.Date, strconv.FormatFloat(h.DistanceKm, 'f', -1, 64), h.Difficulty)
	}
	return tw.Flush()
}

func writeHikeDetail(w io.Writer, h *model.Hike) error {
	fmt.Fprintf(w, "ID: %d\n", h.ID)
	fmt.Fprintln(w, h.Summary())
	if h.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", h.Description)
	}
	return nil
}

func writeObservationTable(w io.Writer, observations []model.Observation) error {
	if len(observations) == 0 {
		_, err := fmt.Fprintln(w, "No observations found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTIME\tTITLE\tCOMMENT")
	for _, o := range observations {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.ID, o.Time, o.Title, o.Comment)
	}
	return tw.Flush()
}

func writeObservationDetail(w io.Writer, o *model.Observation) error {
	fmt.Fprintf(w, "ID: %d\n", o.ID)
	fmt.Fprintf(w, "Hike: %d\n", o.HikeID)
	fmt.Fprintf(w, "Title: %s\n", o.Title)
	fmt.Fprintf(w, "Time: %s\n", o.Time)
	_, err := fmt.Fprintf(w, "Comment: %s\n", o.Comment)
	return err
}
