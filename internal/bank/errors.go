package bank

import "fmt"

// LoadError reports a question bank that is missing or malformed.
// The application cannot start without a valid bank.
type LoadError struct {
	Path  string // source file, empty when parsing raw bytes
	Index int    // offending question, -1 when the whole document is at fault
	Err   error
}

func (e *LoadError) Error() string {
	src := e.Path
	if src == "" {
		src = "<input>"
	}
	if e.Index >= 0 {
		return fmt.Sprintf("load question bank %s: question %d: %v", src, e.Index, e.Err)
	}
	return fmt.Sprintf("load question bank %s: %v", src, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
