// Package errors provides the typed errors shared across the churn-risk
// module. Every constructor attaches a stack trace via cockroachdb/errors,
// and each type implements zerolog.LogObjectMarshaler so failures carry
// their structured context into the logs.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// DatasetError reports a failure while loading or parsing a dataset file.
type DatasetError struct {
	Path string
	Op   string // "read", "parse", "cast"
	Err  error
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("churn: %s dataset %q: %v", e.Op, e.Path, e.Err)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured dataset context to a zerolog event.
func (e *DatasetError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("op", e.Op).
		AnErr("cause", e.Err).
		Str("type", "DatasetError")
}

// NewDatasetError wraps err with the dataset path and operation.
func NewDatasetError(path, op string, err error) error {
	return errors.WithStack(&DatasetError{Path: path, Op: op, Err: err})
}

// ColumnNotFoundError reports a reference to a column the frame does not have.
type ColumnNotFoundError struct {
	Column string
	Frame  string // "train", "test", or a frame description
}

func (e *ColumnNotFoundError) Error() string {
	if e.Frame != "" {
		return fmt.Sprintf("churn: column %q not found in %s frame", e.Column, e.Frame)
	}
	return fmt.Sprintf("churn: column %q not found", e.Column)
}

// MarshalZerologObject adds the structured column context to a zerolog event.
func (e *ColumnNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Str("frame", e.Frame).
		Str("type", "ColumnNotFoundError")
}

// NewColumnNotFoundError creates a ColumnNotFoundError with a stack trace.
func NewColumnNotFoundError(column, frame string) error {
	return errors.WithStack(&ColumnNotFoundError{Column: column, Frame: frame})
}

// RowIndexError reports a row index outside the test frame.
type RowIndexError struct {
	Index int
	Rows  int
}

func (e *RowIndexError) Error() string {
	return fmt.Sprintf("churn: row index %d out of range [0, %d)", e.Index, e.Rows)
}

// MarshalZerologObject adds the structured row context to a zerolog event.
func (e *RowIndexError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("row_index", e.Index).
		Int("rows", e.Rows).
		Str("type", "RowIndexError")
}

// NewRowIndexError creates a RowIndexError with a stack trace.
func NewRowIndexError(index, rows int) error {
	return errors.WithStack(&RowIndexError{Index: index, Rows: rows})
}

// ValueError reports an argument whose value is unusable for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("churn: %s: %s", e.Op, e.Message)
}

// MarshalZerologObject adds the structured operation context to a zerolog event.
func (e *ValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("message", e.Message).
		Str("type", "ValueError")
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// cockroachdb/errors passthroughs, so callers need a single errors import.

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message, keeping the cause chain.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message, keeping the cause chain.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

var (
	// ErrEmptyFrame is returned when a dataset has no rows.
	ErrEmptyFrame = New("empty frame")
)
