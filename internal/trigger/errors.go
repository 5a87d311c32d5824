package trigger

import (
	"fmt"

	"github.com/specialistvlad/pagegridgo/internal/model"
)

// LoadError means no implementation is registered for a trigger.
type LoadError struct {
	Namespace model.Namespace
	Name      string
}

func (e *LoadError) Error() string {
	if !e.Namespace.Valid() {
		return fmt.Sprintf("failed to load trigger %s/%s: unknown trigger type '%s'", e.Namespace, e.Name, e.Namespace)
	}
	return fmt.Sprintf("failed to load trigger %s/%s: no implementation registered", e.Namespace, e.Name)
}

// ExecutionError wraps a failure returned, or a panic raised, by an
// implementation.
type ExecutionError struct {
	Namespace model.Namespace
	Name      string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("trigger %s/%s failed: %v", e.Namespace, e.Name, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
