// Package diag carries the interpreter's error taxonomy and diagnostic
// tracing, generalizing the teacher's PlatformError/ExecutionError/Tracer
// trio from a single SCXML document's xmldom.Element to this engine's
// vdom.Element and its richer exception-code space.
package diag

import (
	"fmt"
	"log/slog"

	"github.com/agentflare-ai/hvml-go/vdom"
)

// Code enumerates the interpreter's built-in exception atoms, the
// generalization of the original's fixed C enum of `PURC_ERROR_*` values.
type Code string

const (
	CodeOK             Code = ""
	CodeOOM            Code = "NoMemory"
	CodeBadArg         Code = "WrongDataType"
	CodeInvalidValue   Code = "InvalidValue"
	CodeNotExists      Code = "EntityNotFound"
	CodeNotAllowed     Code = "AccessDenied"
	CodeNotImplemented Code = "NotImplemented"
	CodeNotSupported   Code = "NotSupported"
	CodeServerRefused  Code = "ServerRefused"
	CodeInternalError  Code = "InternalFailure"
	CodeTimeout        Code = "Timeout"
	CodeBrokenPipe     Code = "BrokenPipe"
)

// Exception is the structured payload carried by a coroutine's exception
// slot (spec component E); Info optionally carries a value describing the
// faulting data, and Backtrace is the frame-tag stack at the point the
// exception was raised.
type Exception struct {
	Code      Code
	Message   string
	Info      interface{}
	Backtrace []string
}

func (e *Exception) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

// NewException constructs an Exception with the given code and a
// formatted message.
func NewException(code Code, format string, args ...interface{}) *Exception {
	return &Exception{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ExecutionError reports a failure raised while running a specific
// element, mirroring the teacher's ExecutionError but over vdom.Element
// rather than xmldom.Element directly.
type ExecutionError struct {
	Message string
	Element vdom.Element
}

func (e *ExecutionError) Error() string {
	if e.Element == nil {
		return fmt.Sprintf("execution error: %s", e.Message)
	}
	pos := e.Element.Position()
	return fmt.Sprintf("execution error: %s in %s at %d:%d", e.Message, e.Element.TagName(), pos.Line, pos.Column)
}

var _ error = (*ExecutionError)(nil)

// PlatformError reports a failure that should surface as a document-level
// error event, carrying a free-form data bag the way the teacher's
// PlatformError does for SCXML's `error.execution` events.
type PlatformError struct {
	EventName string
	Message   string
	Data      map[string]any
	Cause     error
}

func (e *PlatformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PlatformError) Unwrap() error { return e.Cause }

var _ error = (*PlatformError)(nil)

// Position locates a diagnostic in source; Offset is a byte offset into
// the originating document buffer.
type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int64  `json:"offset"`
}

// Trace is a single diagnostic record, shaped after the teacher's
// validator.Trace but keyed to this interpreter's element tree.
type Trace struct {
	Level     slog.Level `json:"level"`
	Code      Code       `json:"code"`
	Message   string     `json:"message"`
	Position  Position   `json:"position"`
	Tag       string     `json:"tag,omitempty"`
	Attribute string     `json:"attribute,omitempty"`
	Hints     []string   `json:"hints,omitempty"`
}

// Option customizes a Trace at the call site, e.g. diag.WithHints(...).
type Option func(*Trace)

func WithAttribute(name string) Option {
	return func(t *Trace) { t.Attribute = name }
}

func WithHints(hints ...string) Option {
	return func(t *Trace) { t.Hints = append(t.Hints, hints...) }
}

// Tracer collects diagnostics over a run, the same three-severity,
// clearable ledger the teacher's validator package implements.
type Tracer interface {
	Error(code Code, message string, el vdom.Element, opts ...Option)
	Warn(code Code, message string, el vdom.Element, opts ...Option)
	Info(code Code, message string, el vdom.Element, opts ...Option)

	Diagnostics() []Trace
	HasErrors() bool
	Clear()
}

// CollectingTracer is the default in-process Tracer: it appends every
// record to a slice and reports errors present via HasErrors, exactly the
// shape the teacher's validator.Reporter uses.
type CollectingTracer struct {
	records []Trace
}

func NewCollectingTracer() *CollectingTracer { return &CollectingTracer{} }

func (t *CollectingTracer) record(level slog.Level, code Code, message string, el vdom.Element, opts []Option) {
	tr := Trace{Level: level, Code: code, Message: message}
	if el != nil {
		pos := el.Position()
		tr.Position = Position{Line: pos.Line, Column: pos.Column, Offset: pos.Offset}
		tr.Tag = el.TagName()
	}
	for _, o := range opts {
		o(&tr)
	}
	t.records = append(t.records, tr)
}

func (t *CollectingTracer) Error(code Code, message string, el vdom.Element, opts ...Option) {
	t.record(slog.LevelError, code, message, el, opts)
}

func (t *CollectingTracer) Warn(code Code, message string, el vdom.Element, opts ...Option) {
	t.record(slog.LevelWarn, code, message, el, opts)
}

func (t *CollectingTracer) Info(code Code, message string, el vdom.Element, opts ...Option) {
	t.record(slog.LevelInfo, code, message, el, opts)
}

func (t *CollectingTracer) Diagnostics() []Trace {
	out := make([]Trace, len(t.records))
	copy(out, t.records)
	return out
}

func (t *CollectingTracer) HasErrors() bool {
	for _, r := range t.records {
		if r.Level == slog.LevelError {
			return true
		}
	}
	return false
}

func (t *CollectingTracer) Clear() { t.records = nil }

var _ Tracer = (*CollectingTracer)(nil)
