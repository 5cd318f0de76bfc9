package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDescriptor is matched by every error reporting a descriptor whose
	// shape does not correspond to any supported variant.
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrNotFound is matched by errors reporting an identifier unknown to a Lookup.
	ErrNotFound = errors.New("service not found")

	// ErrResolution is matched by errors reporting a looked up service that does
	// not provide the capability its position in the chain requires.
	ErrResolution = errors.New("service does not satisfy capability")
)

// DescriptorError describes why a descriptor could not be resolved.
type DescriptorError struct {
	Reason string
}

func (e *DescriptorError) Error() string {
	return "invalid descriptor: " + e.Reason
}

func (e *DescriptorError) Is(target error) bool {
	return target == ErrInvalidDescriptor
}

func invalidf(format string, args ...any) *DescriptorError {
	return &DescriptorError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError is returned by Container when an identifier is not registered.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("service %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ResolutionError reports a looked up instance of the wrong kind.
type ResolutionError struct {
	ID         string
	Capability Capability
	Instance   any
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("service %q resolved to %T, which is not a %s", e.ID, e.Instance, e.Capability)
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}
