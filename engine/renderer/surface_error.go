package renderer

import (
	"errors"
	"strings"
)

// SurfaceErrorKind classifies a failure to acquire or present a surface frame.
type SurfaceErrorKind int

const (
	// SurfaceErrorOther is any failure that matches no known status.
	SurfaceErrorOther SurfaceErrorKind = iota

	// SurfaceErrorLost means the surface must be reconfigured before it can be used again.
	SurfaceErrorLost

	// SurfaceErrorOutdated means the surface no longer matches the window and must be reconfigured.
	SurfaceErrorOutdated

	// SurfaceErrorTimeout means no frame became available in time. The frame is dropped.
	SurfaceErrorTimeout

	// SurfaceErrorOutOfMemory means the device ran out of memory. Not recoverable.
	SurfaceErrorOutOfMemory
)

// String returns the status name of the kind.
func (k SurfaceErrorKind) String() string {
	switch k {
	case SurfaceErrorLost:
		return "lost"
	case SurfaceErrorOutdated:
		return "outdated"
	case SurfaceErrorTimeout:
		return "timeout"
	case SurfaceErrorOutOfMemory:
		return "out of memory"
	default:
		return "other"
	}
}

// SurfaceError wraps a frame acquisition or presentation failure with its classification.
type SurfaceError struct {
	Kind SurfaceErrorKind
	Err  error
}

func (e *SurfaceError) Error() string {
	if e.Err == nil {
		return "surface " + e.Kind.String()
	}
	return "surface " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *SurfaceError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether reconfiguring the surface is enough to continue rendering.
func (e *SurfaceError) Recoverable() bool {
	return e.Kind == SurfaceErrorLost || e.Kind == SurfaceErrorOutdated
}

// classifySurfaceError maps a raw surface status error onto a *SurfaceError.
// An error that is already a *SurfaceError is returned as is.
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	var se *SurfaceError
	if errors.As(err, &se) {
		return err
	}

	msg := strings.ToLower(err.Error())
	kind := SurfaceErrorOther
	switch {
	case strings.Contains(msg, "device"):
		// device loss is not fixed by reconfiguring the surface
	case strings.Contains(msg, "lost"):
		kind = SurfaceErrorLost
	case strings.Contains(msg, "outdated"), strings.Contains(msg, "suboptimal"):
		kind = SurfaceErrorOutdated
	case strings.Contains(msg, "timeout"):
		kind = SurfaceErrorTimeout
	case strings.Contains(msg, "out of memory"), strings.Contains(msg, "outofmemory"):
		kind = SurfaceErrorOutOfMemory
	}
	return &SurfaceError{Kind: kind, Err: err}
}
