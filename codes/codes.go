// Package codes enumerates the error categories surfaced by keel.
//
// The categories mirror the conventions of the single-machine DataFrame
// libraries this one stays compatible with: a missing label is NotFound,
// a malformed grouping key is Invalid, a grouping argument of the wrong
// kind is FailedPrecondition, and a known feature gap is Unimplemented.
package codes

// Code is a coarse error category.
type Code int

const (
	// Inherit indicates that a wrapping error should inherit the code
	// of the error it wraps.
	Inherit Code = iota

	// Invalid indicates an argument whose value is malformed, such as
	// an empty grouping key list or an ambiguous group lookup.
	Invalid

	// NotFound indicates a label or group that does not exist.
	NotFound

	// FailedPrecondition indicates an argument of an unusable kind,
	// such as grouping by a whole DataFrame or by a series of a
	// different length.
	FailedPrecondition

	// Unimplemented indicates an operation that is intentionally not
	// supported, or a deprecated operation that was removed.
	Unimplemented

	// Internal indicates a bug within keel itself.
	Internal
)

func (c Code) String() string {
	switch c {
	case Inherit:
		return "inherit"
	case Invalid:
		return "invalid"
	case NotFound:
		return "not found"
	case FailedPrecondition:
		return "failed precondition"
	case Unimplemented:
		return "unimplemented"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}
