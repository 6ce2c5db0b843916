package errors

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestEngineErrorString(t *testing.T) {
	err := &EngineError{
		Op:   "portal.Register",
		Kind: KindRegistration,
		Err:  fmt.Errorf("id already scoped"),
	}
	got := err.Error()
	if got == "" {
		t.Error("expected non-empty error string")
	}
	if !strings.Contains(got, "portal.Register") || !strings.Contains(got, "registration") {
		t.Errorf("error string %q should contain op and kind", got)
	}
}

func TestEngineErrorWithPortal(t *testing.T) {
	err := &EngineError{
		Op:     "cascade.Allow",
		Kind:   KindCascade,
		Portal: "tooltip-7",
		Err:    fmt.Errorf("registration burst suppressed"),
	}
	got := err.Error()
	want := "portal=tooltip-7"
	if !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestEngineError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner failure")
	err := &EngineError{Op: "x", Kind: KindPlacement, Err: inner}
	if err.Unwrap() != inner {
		t.Error("Unwrap should return the underlying error")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindRegistration, "registration"},
		{KindCascade, "cascade"},
		{KindPlacement, "placement"},
		{KindConfig, "config"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorStringWithOp(t *testing.T) {
	err := &PanicError{
		Op:        "anchor.recompute",
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic in anchor.recompute: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var capturedErr *EngineError
	h := &testHandler{
		onError: func(err *EngineError) {
			capturedErr = err
		},
	}

	prev := SetHandler(h)
	defer SetHandler(prev)

	Report(&EngineError{
		Op:   "test.op",
		Kind: KindConfig,
		Err:  fmt.Errorf("bad tuning"),
	})

	if capturedErr == nil {
		t.Fatal("expected error to be captured")
	}
	if capturedErr.Op != "test.op" {
		t.Errorf("Op = %q, want %q", capturedErr.Op, "test.op")
	}
	if capturedErr.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportPanic(t *testing.T) {
	var capturedPanic *PanicError
	h := &testHandler{
		onPanic: func(err *PanicError) {
			capturedPanic = err
		},
	}

	prev := SetHandler(h)
	defer SetHandler(prev)

	ReportPanic(&PanicError{
		Value:     "test panic value",
		Timestamp: time.Now(),
	})

	if capturedPanic == nil {
		t.Fatal("expected panic to be captured")
	}
	if capturedPanic.Value != "test panic value" {
		t.Errorf("Value = %v, want %q", capturedPanic.Value, "test panic value")
	}
}

func TestRecover(t *testing.T) {
	var capturedPanic *PanicError
	h := &testHandler{
		onPanic: func(err *PanicError) {
			capturedPanic = err
		},
	}

	prev := SetHandler(h)
	defer SetHandler(prev)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if capturedPanic == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if capturedPanic.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", capturedPanic.Value, "intentional test panic")
	}
	if capturedPanic.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", capturedPanic.Op, "test.recover")
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	// Stack should contain some runtime info (either test function or testing infrastructure)
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	prev := SetHandler(nil)
	defer SetHandler(prev)

	if getHandler() == nil {
		t.Error("SetHandler(nil) should set default LogHandler, not nil")
	}
	if _, ok := getHandler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", getHandler())
	}
}

func TestSetHandler_ReturnsPrevious(t *testing.T) {
	first := &testHandler{}
	prev := SetHandler(first)
	defer SetHandler(prev)

	second := &testHandler{}
	got := SetHandler(second)
	if got != Handler(first) {
		t.Errorf("SetHandler should return the previous handler, got %T", got)
	}
}

type testHandler struct {
	onError func(*EngineError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *EngineError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
