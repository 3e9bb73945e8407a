package calc

import (
	"fmt"
	"io"
)

// DisplaySink receives the two display lines after every mutation.
type DisplaySink interface {
	Display(current, previous string)
}

// LineSink writes the previous line followed by the current line to W. The
// previous line is omitted when no operation is pending.
type LineSink struct {
	W   io.Writer
	err error
}

func (s *LineSink) Display(current, previous string) {
	if s.err != nil {
		return
	}
	if previous != "" {
		if _, err := fmt.Fprintln(s.W, previous); err != nil {
			s.err = fmt.Errorf("write previous operand: %w", err)
			return
		}
	}
	if _, err := fmt.Fprintln(s.W, current); err != nil {
		s.err = fmt.Errorf("write current operand: %w", err)
	}
}

// Err reports the first write failure.
func (s *LineSink) Err() error { return s.err }
