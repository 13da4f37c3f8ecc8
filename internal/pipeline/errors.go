package pipeline

import "fmt"

// ConfigurationError is returned when the run cannot start: a missing
// credential, an empty topic catalogue or a malformed stage plan.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Reason, e.Err)
	}
	return "configuration: " + e.Reason
}

func (e ConfigurationError) Unwrap() error { return e.Err }

// CollaboratorUnavailableError is returned when a stage needs a capability
// that was not configured for this run.
type CollaboratorUnavailableError struct {
	StageID    string
	Capability string
}

func (e CollaboratorUnavailableError) Error() string {
	return fmt.Sprintf("stage %q requires %s but it is not configured", e.StageID, e.Capability)
}

// CollaboratorFailureError wraps an error raised by the search or language
// model backend (transport, auth, rate limit, malformed response).
type CollaboratorFailureError struct {
	Collaborator string
	Err          error
}

func (e CollaboratorFailureError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Collaborator, e.Err)
}

func (e CollaboratorFailureError) Unwrap() error { return e.Err }

// RunFailedError aborts a run. It names the stage that failed.
type RunFailedError struct {
	RunID   string
	StageID string
	Err     error
}

func (e RunFailedError) Error() string {
	return fmt.Sprintf("run %s failed at stage %q: %v", e.RunID, e.StageID, e.Err)
}

func (e RunFailedError) Unwrap() error { return e.Err }

// OutputWriteError is returned when the terminal artifact cannot be persisted.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e OutputWriteError) Error() string {
	return fmt.Sprintf("write artifact %s: %v", e.Path, e.Err)
}

func (e OutputWriteError) Unwrap() error { return e.Err }
