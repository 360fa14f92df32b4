package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/stockpost/pkg/support/util/exception"
)

func TestNewPipelineError(t *testing.T) {
	cause := errors.New("underlying failure")
	err := exception.NewPipelineError(exception.KindAlignment, "savings", "id sets diverge", cause)

	assert.Contains(t, err.Error(), "AlignmentError")
	assert.Contains(t, err.Error(), "savings")
	assert.Contains(t, err.Error(), "id sets diverge")
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.NotEmpty(t, err.StackTrace)
}

func TestErrorf(t *testing.T) {
	err := exception.Errorf(exception.KindExcessFailureRate, "registry",
		"upgrade %d failure rate %.2f exceeds %.2f", 3, 0.12, 0.01)
	assert.Contains(t, err.Error(), "upgrade 3 failure rate 0.12 exceeds 0.01")
	assert.Equal(t, exception.KindExcessFailureRate, err.Kind)
}

func TestKindOf(t *testing.T) {
	err := exception.Errorf(exception.KindSegmentCoverage, "segment", "uncovered records")
	assert.Equal(t, exception.KindSegmentCoverage, exception.KindOf(err))

	// Works through wrapping.
	wrapped := fmt.Errorf("stage failed: %w", err)
	assert.Equal(t, exception.KindSegmentCoverage, exception.KindOf(wrapped))

	assert.Equal(t, exception.KindUnknown, exception.KindOf(errors.New("plain")))
	assert.Equal(t, exception.KindUnknown, exception.KindOf(nil))
}

func TestIsFatal(t *testing.T) {
	fatalKinds := []exception.Kind{
		exception.KindExcessFailureRate,
		exception.KindSchemaIntegrity,
		exception.KindAlignment,
		exception.KindSegmentCoverage,
	}
	for _, k := range fatalKinds {
		assert.True(t, exception.IsFatal(exception.Errorf(k, "stage", "boom")), k.String())
	}

	assert.False(t, exception.IsFatal(exception.Errorf(exception.KindUndefinedScaleFactor, "weights", "no weight")))
	assert.False(t, exception.IsFatal(errors.New("plain")))
	assert.False(t, exception.IsFatal(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ExcessFailureRate", exception.KindExcessFailureRate.String())
	assert.Equal(t, "SchemaIntegrityError", exception.KindSchemaIntegrity.String())
	assert.Equal(t, "UndefinedScaleFactor", exception.KindUndefinedScaleFactor.String())
}
