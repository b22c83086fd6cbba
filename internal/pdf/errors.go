package pdf

import (
	"errors"
	"fmt"
)

var (
	// ErrEncrypted is returned when an operation needs to rewrite an encrypted document
	ErrEncrypted = errors.New("document is encrypted")

	// ErrNoPages is returned for documents whose page tree is empty
	ErrNoPages = errors.New("document has no pages")

	// ErrNoXref is returned when the cross-reference section cannot be located
	ErrNoXref = errors.New("startxref not found")
)

// ParseError reports that the input could not be handled as a PDF.
// Parser panics are recovered and reported as a ParseError.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pdf %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// recoverParse converts a panic raised by the parser into a ParseError.
// Use as: defer recoverParse("normalize", &err)
func recoverParse(op string, errp *error) {
	if r := recover(); r != nil {
		var cause error
		switch v := r.(type) {
		case error:
			cause = v
		default:
			cause = fmt.Errorf("%v", v)
		}
		*errp = &ParseError{Op: op, Err: cause}
	}
}
