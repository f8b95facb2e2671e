package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		err := ErrAlreadyExistsAt("myapp")
		assert.Equal(t, "directory 'myapp' already exists", err.Error())
	})

	t.Run("with component and cause", func(t *testing.T) {
		err := ErrIOFailureAt("copy", "a/b.txt", fs.ErrPermission).WithComponent("materializer")
		assert.Equal(t, "materializer: copy a/b.txt: permission denied", err.Error())
	})
}

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		check    func(error) bool
	}{
		{"already exists", ErrAlreadyExistsAt("x"), ErrAlreadyExists, IsAlreadyExists},
		{"template not found", ErrTemplateNotFoundFor("grpc", "templates/grpc"), ErrTemplateNotFound, IsTemplateNotFound},
		{"source not found", ErrSourceNotFoundAt("extras/.github", fs.ErrNotExist), ErrSourceNotFound, IsSourceNotFound},
		{"io failure", ErrIOFailureAt("write", "f", fs.ErrPermission), ErrIOFailure, IsIOFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.True(t, tt.check(tt.err))

			wrapped := fmt.Errorf("scaffold failed: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
		})
	}

	assert.False(t, IsAlreadyExists(ErrTemplateNotFoundFor("x", "y")))
	assert.False(t, IsIOFailure(errors.New("plain")))
}

func TestUnwrapKeepsOSCause(t *testing.T) {
	err := ErrIOFailureAt("open", "src/main.rs", fs.ErrPermission)

	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Equal(t, fs.ErrPermission, errors.Unwrap(err))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, ErrCodeIOFailure, "nothing"))

	inner := ErrSourceNotFoundAt("extras/terraform", nil).WithComponent("materializer")
	outer := Wrap(inner, ErrorTypeInternal, ErrCodeInternalError, "overlay failed")
	require.NotNil(t, outer)

	assert.Equal(t, "materializer", outer.Component)
	assert.Equal(t, "extras/terraform", outer.Path)
	assert.True(t, IsSourceNotFound(outer))
	assert.True(t, HasErrorCode(outer, ErrCodeSourceNotFound))
	assert.True(t, HasErrorCode(outer, ErrCodeInternalError))
	assert.True(t, HasErrorType(outer, ErrorTypeInternal))
	assert.True(t, IsInternal(outer))

	plain := Wrap(errors.New("disk full"), ErrorTypeIO, ErrCodeIOFailure, "write file")
	assert.Equal(t, "write file: disk full", plain.Error())
	assert.True(t, IsIOFailure(plain))
	assert.False(t, IsInternal(plain))

	cfg := WrapConfig(errors.New("bad yaml"), "read config")
	assert.True(t, HasErrorType(cfg, ErrorTypeConfig))
}

func TestWithContext(t *testing.T) {
	err := ErrTemplateNotFoundFor("nonexistent", "templates/nonexistent")

	assert.Equal(t, "nonexistent", err.Context["template"])
	assert.Equal(t, "templates/nonexistent", err.Context["path"])
	assert.Equal(t, "templates/nonexistent", err.Path)
}

func TestNewInternalError(t *testing.T) {
	err := NewInternalError(ErrCodeInternalError, "materialize canceled", context.Canceled).
		WithComponent("materializer")

	assert.Equal(t, "materializer: materialize canceled: context canceled", err.Error())
	assert.True(t, IsInternal(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsIOFailure(err))
}
