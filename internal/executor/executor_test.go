package executor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	boom := errors.New("boom")

	failed := &Result{Status: StatusFailed, Err: boom, Message: boom.Error()}
	assert.Equal(t, boom, failed.Error())
	assert.Equal(t, "failed: boom", failed.String())

	stopped := &Result{Status: StatusStopped, Err: boom}
	assert.NoError(t, stopped.Error())
	assert.Equal(t, "stopped", stopped.String())

	assert.Equal(t, "succeeded", (&Result{}).String())
}
