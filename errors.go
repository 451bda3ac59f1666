package framegraph

import "github.com/pkg/errors"

// CompileError wraps a device failure encountered during Compile,
// attaching the resource or pass context it occurred against. It is
// fatal to the frame: the caller's only recourse is to tear down the
// FrameGraph and reinitialize.
type CompileError struct {
	// Stage names the sub-step that failed (e.g. "heap cache resize").
	Stage string
	// Resource, if non-empty, names the resource being sized or
	// placed when the failure occurred.
	Resource string
	err      error
}

func (e *CompileError) Error() string {
	if e.Resource != "" {
		return "framegraph: " + e.Stage + " (" + e.Resource + "): " + e.err.Error()
	}
	return "framegraph: " + e.Stage + ": " + e.err.Error()
}

func (e *CompileError) Unwrap() error { return e.err }

func wrapCompile(stage, resource string, err error) error {
	if err == nil {
		return nil
	}
	Logger().Error("device error", "stage", stage, "resource", resource, "err", err)
	return &CompileError{Stage: stage, Resource: resource, err: errors.WithStack(err)}
}
