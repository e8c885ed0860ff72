package matrix

import "errors"

// Sentinel errors for matrix and network operations. Callers match them with
// errors.Is; call sites wrap them with the offending shapes or paths.
var (
	// ErrShapeMismatch indicates operands whose dimensions violate an
	// operation's precondition.
	ErrShapeMismatch = errors.New("matrix: shape mismatch")

	// ErrInvalidArgument indicates an argument outside the accepted domain,
	// such as an unsupported flatten axis.
	ErrInvalidArgument = errors.New("matrix: invalid argument")

	// ErrIO indicates a persisted file that is missing, unreadable or malformed.
	ErrIO = errors.New("matrix: io failure")

	// ErrParse indicates a token that is not a valid number.
	ErrParse = errors.New("matrix: parse failure")
)
