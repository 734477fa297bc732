package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeHostUnreachable, "host not resolvable")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeHostUnreachable {
		t.Errorf("expected code %s, got %s", ErrCodeHostUnreachable, err.Code)
	}
	if err.Message != "host not resolvable" {
		t.Errorf("expected message 'host not resolvable', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeRemoteCall, "operation failed", cause)

	if err.Code != ErrCodeRemoteCall {
		t.Errorf("expected code %s, got %s", ErrCodeRemoteCall, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("timeout")
	ctx := map[string]interface{}{
		"operation": "stat",
		"host":      "mon0",
	}

	err := WrapWithContext(ErrCodeTimeout, "stat collection failed", cause, ctx)

	if err.Code != ErrCodeTimeout {
		t.Errorf("expected code %s, got %s", ErrCodeTimeout, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["operation"] != "stat" {
		t.Errorf("expected operation to be stat")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeHostUnreachable, "unreachable"),
			expected: "[HOST_UNREACHABLE] unreachable",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	base := New(ErrCodeAllNodesUnreachable, "all nodes failed to connect")
	wrapped := Wrap(ErrCodeInternal, "run aborted", base)

	if !HasCode(base, ErrCodeAllNodesUnreachable) {
		t.Error("expected HasCode to match direct error")
	}
	if HasCode(base, ErrCodeTimeout) {
		t.Error("expected HasCode to reject mismatched code")
	}
	// As unwraps to the outermost StructuredError first
	if !HasCode(wrapped, ErrCodeInternal) {
		t.Error("expected HasCode to match outer error")
	}
	if HasCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("expected HasCode to reject plain errors")
	}
}
