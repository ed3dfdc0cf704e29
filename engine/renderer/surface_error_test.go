package renderer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySurfaceError(t *testing.T) {
	cases := []struct {
		msg         string
		kind        SurfaceErrorKind
		recoverable bool
	}{
		{"GetCurrentTexture(): Lost", SurfaceErrorLost, true},
		{"surface Outdated", SurfaceErrorOutdated, true},
		{"status Suboptimal", SurfaceErrorOutdated, true},
		{"Timeout", SurfaceErrorTimeout, false},
		{"OutOfMemory", SurfaceErrorOutOfMemory, false},
		{"out of memory", SurfaceErrorOutOfMemory, false},
		{"DeviceLost", SurfaceErrorOther, false},
		{"validation error", SurfaceErrorOther, false},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			raw := errors.New(tc.msg)
			err := classifySurfaceError(raw)

			var se *SurfaceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.kind, se.Kind)
			assert.Equal(t, tc.recoverable, se.Recoverable())
			assert.ErrorIs(t, err, raw)
		})
	}
}

func TestClassifySurfaceErrorKeepsClassified(t *testing.T) {
	assert.NoError(t, classifySurfaceError(nil))

	original := &SurfaceError{Kind: SurfaceErrorTimeout}
	wrapped := fmt.Errorf("frame: %w", original)
	assert.Same(t, wrapped, classifySurfaceError(wrapped))
	assert.Equal(t, "surface timeout", original.Error())
}
