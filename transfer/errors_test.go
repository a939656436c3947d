package transfer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PipelineError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	for stage, sentinel := range stageErrors {
		t.Run(string(stage), func(t *testing.T) {
			t.Parallel()

			err := fmt.Errorf("run failed: %w", &PipelineError{Stage: stage, Err: cause})

			require.ErrorIs(t, err, sentinel)
			require.ErrorIs(t, err, cause)
			for other, otherSentinel := range stageErrors {
				if other != stage {
					require.NotErrorIs(t, err, otherSentinel)
				}
			}

			got, ok := FailedStage(err)
			require.True(t, ok)
			assert.Equal(t, stage, got)
			assert.Equal(t, "run failed: "+string(stage)+": boom", err.Error())
		})
	}
}

func Test_PipelineError_WrapsContextError(t *testing.T) {
	t.Parallel()

	err := error(&PipelineError{Stage: StageTaskStart, Err: context.DeadlineExceeded})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, err, ErrTaskStartFailed)
}

func Test_FailedStage_NotAPipelineError(t *testing.T) {
	t.Parallel()

	stage, ok := FailedStage(ErrInvalidSpec)
	assert.False(t, ok)
	assert.Empty(t, stage)

	_, ok = FailedStage(nil)
	assert.False(t, ok)
}
