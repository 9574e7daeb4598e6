package lewei

import "fmt"

// Kind classifies the error conditions the client can report, per the
// protocol's error-handling design.
type Kind int

const (
	// KindNetwork covers connect/read/write failures, unexpected EOF, and
	// timeouts.
	KindNetwork Kind = iota
	// KindFraming covers magic mismatch, short buffers, and declared-vs-
	// received body length mismatch.
	KindFraming
	// KindProtocol covers semantically invalid responses: unexpected
	// FileFrameFlag transitions, malformed list entries, nonzero arg1 on
	// a mutator.
	KindProtocol
	// KindNotFound covers a file download that the camera reports missing.
	KindNotFound
	// KindInvalidArgument covers caller-side violations of documented
	// bounds, checked before any I/O.
	KindInvalidArgument
	// KindUnsupported covers a decoded enum value outside the known set.
	KindUnsupported
	// KindCancelled covers a stream terminated by StopStream or an
	// external interrupt.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindFraming:
		return "framing"
	case KindProtocol:
		return "protocol"
	case KindNotFound:
		return "not found"
	case KindInvalidArgument:
		return "invalid argument"
	case KindUnsupported:
		return "unsupported"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every operation in this package.
type Error struct {
	Kind Kind
	// Code carries the device's raw arg1 value when Kind is KindProtocol
	// and the failure came from a nonzero mutator response, for
	// diagnostics.
	Code int64
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lewei: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("lewei: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can do errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

func newProtoErr(msg string, code int64) *Error {
	return &Error{Kind: KindProtocol, Msg: msg, Code: code}
}
