package publish

import (
	"fmt"
	"io"
)

// Stdout prints the status line whenever it changes.
type Stdout struct {
	w       io.Writer
	last    string
	written bool
}

func NewStdout(w io.Writer) *Stdout {
	return &Stdout{w: w}
}

func (s *Stdout) Publish(text string) error {
	if s.written && s.last == text {
		return nil
	}
	if _, err := fmt.Fprintln(s.w, text); err != nil {
		return err
	}
	s.last = text
	s.written = true
	return nil
}

func (s *Stdout) Close() error {
	return nil
}
