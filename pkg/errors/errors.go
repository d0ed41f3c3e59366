// Package errors defines the closed set of error kinds the engine surfaces
// across its API boundary: input/node validation failures raised during
// resume, streaming/JSON conversion failures, per-module execution failures,
// and configuration/lookup failures at the facade.
package errors

import "fmt"

// InputTypeMismatchError is returned when a value supplied for a declared
// input does not match the input's declared CType.
type InputTypeMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

// NewInputTypeMismatchError constructs an InputTypeMismatchError.
func NewInputTypeMismatchError(name, expected, actual string) error {
	return &InputTypeMismatchError{Name: name, Expected: expected, Actual: actual}
}

func (e *InputTypeMismatchError) Error() string {
	return fmt.Sprintf("input %q type mismatch: expected %s, got %s", e.Name, e.Expected, e.Actual)
}

// InputAlreadyProvidedError is returned when a resume attempts to provide a
// different value for an input that was already supplied.
type InputAlreadyProvidedError struct {
	Name string
}

// NewInputAlreadyProvidedError constructs an InputAlreadyProvidedError.
func NewInputAlreadyProvidedError(name string) error {
	return &InputAlreadyProvidedError{Name: name}
}

func (e *InputAlreadyProvidedError) Error() string {
	return fmt.Sprintf("input %q was already provided with a different value", e.Name)
}

// NodeTypeMismatchError is returned when a manually resolved data node's
// value does not match the node's declared CType.
type NodeTypeMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

// NewNodeTypeMismatchError constructs a NodeTypeMismatchError.
func NewNodeTypeMismatchError(name, expected, actual string) error {
	return &NodeTypeMismatchError{Name: name, Expected: expected, Actual: actual}
}

func (e *NodeTypeMismatchError) Error() string {
	return fmt.Sprintf("node %q type mismatch: expected %s, got %s", e.Name, e.Expected, e.Actual)
}

// NodeAlreadyResolvedError is returned when a resume attempts to manually
// resolve a data node that already has a computed value.
type NodeAlreadyResolvedError struct {
	Name string
}

// NewNodeAlreadyResolvedError constructs a NodeAlreadyResolvedError.
func NewNodeAlreadyResolvedError(name string) error {
	return &NodeAlreadyResolvedError{Name: name}
}

func (e *NodeAlreadyResolvedError) Error() string {
	return fmt.Sprintf("node %q is already resolved", e.Name)
}

// UnknownNodeError is returned when a name does not correspond to any
// declared input or data node in the DagSpec.
type UnknownNodeError struct {
	Name string
}

// NewUnknownNodeError constructs an UnknownNodeError.
func NewUnknownNodeError(name string) error {
	return &UnknownNodeError{Name: name}
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node %q", e.Name)
}

// StreamingError wraps a JSON parse or limit failure from the streaming
// converter. Its message is either one of the converter's fixed limit or
// shape messages or the underlying JSON decoder's error text.
type StreamingError struct {
	Message string
}

// NewStreamingError constructs a StreamingError.
func NewStreamingError(message string) error {
	return &StreamingError{Message: message}
}

func (e *StreamingError) Error() string {
	return e.Message
}

// ModuleExecutionError represents a single failed module within a run. A
// Failed PipelineStatus collects one of these per failing module.
type ModuleExecutionError struct {
	ModuleName string
	ModuleID   string
	Message    string
	Err        error
}

// NewModuleExecutionError constructs a ModuleExecutionError.
func NewModuleExecutionError(moduleName, moduleID string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ModuleExecutionError{ModuleName: moduleName, ModuleID: moduleID, Message: message, Err: err}
}

func (e *ModuleExecutionError) Error() string {
	return fmt.Sprintf("module %q (%s) failed: %s", e.ModuleName, e.ModuleID, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *ModuleExecutionError) Unwrap() error {
	return e.Err
}

// ConfigurationError signals invalid or missing configuration: an operation
// for which the facade has no configured collaborator (e.g. resuming without
// a SuspensionStore installed), an invalid DagSpec or YAML DAG document,
// non-positive streaming limits, or a resume already in progress.
type ConfigurationError struct {
	Message string
}

// NewConfigurationError constructs a ConfigurationError.
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// NotFoundError signals that a requested resource (a suspension handle, a
// table slot) does not exist.
type NotFoundError struct {
	Message string
}

// NewNotFoundError constructs a NotFoundError.
func NewNotFoundError(message string) error {
	return &NotFoundError{Message: message}
}

func (e *NotFoundError) Error() string {
	return e.Message
}
