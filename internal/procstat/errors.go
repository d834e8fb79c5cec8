package procstat

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedLine   = errors.New("malformed cpu line")
	ErrNoAggregateLine = errors.New("cpu aggregate line not found")
	ErrDuplicateCoreID = errors.New("duplicate cpu core id")
	ErrEmpty           = errors.New("no cpu core lines found")
)

// LineError reports the input line that failed to parse.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func lineErr(num int, text string, err error) error {
	return &LineError{Line: num, Text: text, Err: err}
}
