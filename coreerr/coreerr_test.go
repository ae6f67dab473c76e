package coreerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Unwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindConnector, "dial postgres", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if got := err.Error(); got != "dial postgres: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNew_HasNoWrappedCause(t *testing.T) {
	err := New(KindUser, "missing --schema flag")
	if err.Error() != "missing --schema flag" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("expected Unwrap() to be nil for a bare New error")
	}
}

func TestOf_ClassifiesWrappedErrors(t *testing.T) {
	inner := New(KindDrift, "history mismatch")
	outer := fmt.Errorf("diagnosing: %w", inner)

	kind, ok := Of(outer)
	if !ok {
		t.Fatal("expected Of to find the *Error through fmt.Errorf wrapping")
	}
	if kind != KindDrift {
		t.Errorf("Kind = %v, want KindDrift", kind)
	}
}

func TestOf_UnclassifiedErrorIsInternal(t *testing.T) {
	kind, ok := Of(errors.New("plain error"))
	if ok {
		t.Error("expected ok=false for a non-coreerr error")
	}
	if kind != KindInternal {
		t.Errorf("Kind = %v, want KindInternal as the conservative default", kind)
	}
}

func TestRecover_CapturesPanicAsInternalError(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		panic(errors.New("index out of range"))
	}

	err := run()
	if err == nil {
		t.Fatal("expected Recover to populate the named return")
	}
	kind, ok := Of(err)
	if !ok || kind != KindInternal {
		t.Errorf("Kind = %v, ok = %v, want KindInternal", kind, ok)
	}
}

func TestError_Code(t *testing.T) {
	err := New(KindDrift, "history mismatch")
	if err.Code() != Code("drift") {
		t.Errorf("Code() = %q, want drift", err.Code())
	}
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		KindUser:        "user",
		KindConnector:   "connector",
		KindDrift:       "drift",
		KindUnsupported: "unsupported",
		KindInternal:    "internal",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", k, got, want)
		}
	}
}
