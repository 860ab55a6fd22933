package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	plain := New(ErrCodeNotFound, "donation not found")
	if Code(plain) != ErrCodeNotFound {
		t.Errorf("Code() = %q, want NOT_FOUND", Code(plain))
	}

	wrapped := fmt.Errorf("handler: %w", Wrap(stderrors.New("disk full"), ErrCodeInternalError, "photo upload failed"))
	if Code(wrapped) != ErrCodeInternalError {
		t.Errorf("Code() through wrapping = %q, want INTERNAL_ERROR", Code(wrapped))
	}

	if Code(stderrors.New("something else")) != "" {
		t.Error("Code() on a non-domain error should be empty")
	}
	if Code(nil) != "" {
		t.Error("Code(nil) should be empty")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Wrap(cause, ErrCodeInternalError, "outbox write failed")
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable through errors.Is")
	}
}
