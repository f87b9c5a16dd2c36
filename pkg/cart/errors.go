package cart

import "errors"

// ErrSyntax is matched by every error Decode returns.
var ErrSyntax = errors.New("malformed cart text")

// ParseError reports text the section parser could not tokenize.
type ParseError struct {
	Err error // error from the section parser
}

func (e *ParseError) Error() string {
	return "cart: malformed text: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSyntax.
func (e *ParseError) Is(target error) bool {
	return target == ErrSyntax
}
