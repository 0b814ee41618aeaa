package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/audioctl/internal/ir"
)

func TestErrorHelpers(t *testing.T) {
	cause := errors.New("permission denied")
	tests := []struct {
		err  error
		code ErrorCode
		is   func(error) bool
	}{
		{NewNotSupportedError("{x}"), ErrCodeNotSupported, IsNotSupported},
		{NewNoCandidateError("nothing flipped", nil), ErrCodeNoCandidate, IsNoCandidate},
		{NewWriteFailureError("no hive accepted", cause), ErrCodeWriteFailure, IsWriteFailure},
		{NewVerificationTimeoutError(ir.On, ir.Off, time.Second), ErrCodeVerificationTimeout, IsVerificationTimeout},
		{NewCatalogIOError("/tmp/c.ini", cause), ErrCodeCatalogIO, IsCatalogIO},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.is(wrapped))
			code, ok := CodeOf(wrapped)
			assert.True(t, ok)
			assert.Equal(t, tt.code, code)
		})
	}

	assert.False(t, IsNotSupported(cause))
	_, ok := CodeOf(nil)
	assert.False(t, ok)
}

func TestError_Message(t *testing.T) {
	cause := errors.New("disk full")
	err := NewCatalogIOError("/tmp/c.ini", cause)
	assert.Equal(t, "CATALOG_IO: catalog access failed (path=/tmp/c.ini): disk full", err.Error())
	assert.True(t, errors.Is(err, cause))

	timeout := NewVerificationTimeoutError(ir.On, ir.Unknown, 2500*time.Millisecond)
	assert.Equal(t, "VERIFICATION_TIMEOUT: state did not read back as on within 2.5s (last read unknown)", timeout.Error())
}
