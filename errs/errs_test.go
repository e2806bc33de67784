package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_ErrorIncludesOpKindAndWrapped(t *testing.T) {
	err := New(Connectivity, "mongodb.connect", errors.New("dial tcp: timeout"))
	assert.Equal(t, "mongodb.connect: connectivity: dial tcp: timeout", err.Error())
}

func TestError_ErrorOmitsWrappedWhenNil(t *testing.T) {
	err := New(Cancellation, "incremental.deadline", nil)
	assert.Equal(t, "incremental.deadline: cancellation", err.Error())
}

func TestError_UnwrapReturnsWrappedErr(t *testing.T) {
	inner := errors.New("boom")
	err := New(TargetWrite, "surreal.apply", inner)
	assert.Equal(t, inner, errors.Unwrap(err))
}

func TestIs_MatchesThroughMultipleWrappingLayers(t *testing.T) {
	inner := New(Connectivity, "mysql.connect", errors.New("refused"))
	outer := New(CaptureSetup, "mysql.prepare", inner)
	assert.True(t, Is(outer, Connectivity))
	assert.True(t, Is(outer, CaptureSetup))
	assert.False(t, Is(outer, Conversion))
}

func TestIs_FollowsStdlibUnwrapChain(t *testing.T) {
	base := New(Connectivity, "postgres.connect", errors.New("refused"))
	wrapped := fmt.Errorf("while syncing: %w", base)
	assert.True(t, Is(wrapped, Connectivity))
}

func TestIs_FalseForNilError(t *testing.T) {
	assert.False(t, Is(nil, Connectivity))
}

func TestRetryable_TrueOnlyForConnectivityAndTargetWrite(t *testing.T) {
	assert.True(t, Retryable(New(Connectivity, "op", nil)))
	assert.True(t, Retryable(New(TargetWrite, "op", nil)))
	assert.False(t, Retryable(New(Configuration, "op", nil)))
	assert.False(t, Retryable(New(Conversion, "op", nil)))
}

func TestFatal_TrueForConfigurationCaptureSetupAndStaleCheckpoint(t *testing.T) {
	assert.True(t, Fatal(New(Configuration, "op", nil)))
	assert.True(t, Fatal(New(CaptureSetup, "op", nil)))
	assert.True(t, Fatal(New(StaleCheckpoint, "op", nil)))
	assert.False(t, Fatal(New(Cancellation, "op", nil)))
}
