// Package errors provides domain-specific error types for kuasarctl.
//
// Every failure that reaches the CLI carries a Kind so the process can
// pick a distinct exit code (resolution vs connection vs local I/O)
// and so callers can branch on the failure class without string
// matching.
package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrNotConnected  = errors.New("not connected")
	ErrTimeout       = errors.New("operation timed out")
	ErrNoOKResponse  = errors.New("no OK response received")
	ErrCommandNull   = errors.New("command contains null byte, which is not allowed")
	ErrNotATerminal  = errors.New("standard input is not a terminal")
	ErrChannelClosed = errors.New("channel is closed")
)

// ── Kinds and exit codes ─────────────────────────────────────────────

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindNotFound
	KindAmbiguousPrefix
	KindConnectionFailed
	KindHandshakeFailed
	KindLocalIO
	KindInterrupted
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not found"
	case KindAmbiguousPrefix:
		return "ambiguous prefix"
	case KindConnectionFailed:
		return "connection failed"
	case KindHandshakeFailed:
		return "handshake failed"
	case KindLocalIO:
		return "local I/O failure"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Exit codes.
const (
	ExitSuccess    = 0
	ExitGeneral    = 1
	ExitResolution = 2
	ExitConnection = 3
	ExitLocalIO    = 126
)

// ExitCode returns the exit code for this kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindNotFound, KindAmbiguousPrefix:
		return ExitResolution
	case KindConnectionFailed, KindHandshakeFailed:
		return ExitConnection
	case KindLocalIO:
		return ExitLocalIO
	case KindInterrupted:
		return ExitSuccess
	default:
		return ExitGeneral
	}
}

// ── Structured error types ───────────────────────────────────────────

// Error is a classified failure. Msg is the user-facing summary; Err
// is the underlying cause, if any.
type Error struct {
	Kind       Kind
	Op         string   // "resolve", "dial", "handshake", "relay", "terminal"
	Msg        string   // human-readable summary
	Err        error    // underlying error (optional)
	Hint       string   // suggestion for the user (optional)
	Candidates []string // ids relevant to NotFound / AmbiguousPrefix
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(e.Op)
		b.WriteString(": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// WithHint attaches a hint and returns e for chaining.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey", "dial", "session"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// NotFound reports that no candidate matched.
func NotFound(msg string, candidates []string) *Error {
	return &Error{Kind: KindNotFound, Op: "resolve", Msg: msg, Candidates: candidates}
}

// Ambiguous reports that more than one candidate matched.
func Ambiguous(msg string, matches []string) *Error {
	return &Error{Kind: KindAmbiguousPrefix, Op: "resolve", Msg: msg, Candidates: matches}
}

// ConnectionFailed wraps a failure to reach a control socket.
func ConnectionFailed(path string, err error) *Error {
	return &Error{
		Kind: KindConnectionFailed,
		Op:   "dial",
		Msg:  fmt.Sprintf("failed to connect to socket %s", path),
		Err:  err,
	}
}

// HandshakeFailed wraps a failed CONNECT negotiation.
func HandshakeFailed(port uint32, err error) *Error {
	return &Error{
		Kind: KindHandshakeFailed,
		Op:   "handshake",
		Msg:  fmt.Sprintf("failed to establish connection to port %d", port),
		Err:  err,
	}
}

// LocalIO wraps a terminal or stream failure after the session started.
func LocalIO(op string, err error) *Error {
	return &Error{Kind: KindLocalIO, Op: op, Msg: op + " failed", Err: err}
}

// Config wraps a validation failure that is not tied to a single flag.
func Config(msg string) *Error {
	return &Error{Kind: KindConfig, Op: "config", Msg: msg}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return KindConfig
	}
	return KindUnknown
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }

// ExitCode maps err to a process exit code. A nil error exits 0.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return KindOf(err).ExitCode()
}

// IsTransient reports whether err is a condition that should be
// retried in place: interrupted system calls, would-block and elapsed
// deadlines.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use kuasarctl/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
