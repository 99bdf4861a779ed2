package errs

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapCarriesCodeAndPath(t *testing.T) {
	t.Parallel()
	cause := errors.New("disk full")
	err := Wrap(IOError, cause, "out/a.ts", "write file")
	require.Error(t, err)

	assert.True(t, IsCode(err, IOError))
	assert.False(t, IsCode(err, NetworkError))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "out/a.ts")
	assert.Contains(t, err.Error(), "disk full")
}

func TestWrapNil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Wrap(IOError, nil, "x", "y"))
}

func TestCodeOfThroughWrapping(t *testing.T) {
	t.Parallel()
	inner := Newf(ValidationError, "operation %d has no name", 3)
	outer := errors.Wrap(inner, "normalize")
	assert.Equal(t, ValidationError, CodeOf(outer))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}
