package errors

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
)

type StackFrame struct {
	FuncName string
	File     string
	Line     int
}

type TracedError struct {
	Stack []StackFrame
	Cause error
}

func (e *TracedError) Error() string {
	return fmt.Sprintf("err(%s), stack(%s)", e.Cause.Error(), e.StackOneLine())
}

func (e *TracedError) Unwrap() error {
	return e.Cause
}

func (e *TracedError) StackOneLine() string {
	var b bytes.Buffer
	for i, r := range e.Stack {
		if i == 0 {
			fmt.Fprintf(&b, "[%s(%s:%d)]", r.FuncName, r.File, r.Line)
		} else {
			fmt.Fprintf(&b, "->[%s]", r.FuncName)
		}
	}
	return b.String()
}

// WithStack records up to three callers above the call site. An error
// that already carries a stack is returned as is.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*TracedError); ok {
		return err
	}
	return &TracedError{
		Stack: callers(2, 3),
		Cause: err,
	}
}

func Errorf(f string, args ...interface{}) error {
	return &TracedError{
		Stack: callers(2, 3),
		Cause: fmt.Errorf(f, args...),
	}
}

func callers(skip, depth int) []StackFrame {
	pcs := make([]uintptr, depth)
	n := runtime.Callers(skip+1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]StackFrame, 0, n)
	for {
		f, more := frames.Next()
		if f.Function == "" || strings.HasPrefix(f.Function, "runtime.") {
			break
		}
		stack = append(stack, StackFrame{FuncName: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return stack
}
