package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInputTypeMismatchErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewInputTypeMismatchError("text", "CString", "CInt")

	var mismatch *InputTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "text", mismatch.Name)
	require.Contains(t, err.Error(), "CString")
	require.Contains(t, err.Error(), "CInt")
}

func TestInputAlreadyProvidedErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewInputAlreadyProvidedError("suffix")

	var already *InputAlreadyProvidedError
	require.ErrorAs(t, err, &already)
	require.Equal(t, "suffix", already.Name)
}

func TestNodeAlreadyResolvedErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewNodeAlreadyResolvedError("result")

	var resolved *NodeAlreadyResolvedError
	require.ErrorAs(t, err, &resolved)
	require.Contains(t, err.Error(), "result")
}

func TestUnknownNodeErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewUnknownNodeError("ghost")

	var unknown *UnknownNodeError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "ghost", unknown.Name)
}

func TestModuleExecutionErrorWrapsCause(t *testing.T) {
	t.Parallel()

	cause := NewNotFoundError("data foo not found")
	err := NewModuleExecutionError("Uppercase", "m1", cause)

	var moduleErr *ModuleExecutionError
	require.ErrorAs(t, err, &moduleErr)
	require.Equal(t, "Uppercase", moduleErr.ModuleName)
	require.Equal(t, "m1", moduleErr.ModuleID)
	require.Equal(t, cause, moduleErr.Unwrap())
}

func TestConfigurationErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewConfigurationError("No SuspensionStore configured")
	require.EqualError(t, err, "No SuspensionStore configured")
}
