package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrainScheduler(t *testing.T) {
	t.Run("start and stop", func(t *testing.T) {
		s := NewRetrainScheduler(func() error { return nil })
		require.NoError(t, s.Start("@every 1h"))
		assert.True(t, s.Running())

		s.Stop()
		assert.False(t, s.Running())
	})

	t.Run("invalid cron expression", func(t *testing.T) {
		s := NewRetrainScheduler(func() error { return nil })
		err := s.Start("not a cron expr")
		require.Error(t, err)
		assert.False(t, s.Running())
	})
}
