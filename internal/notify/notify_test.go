package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentmatch/internal/config"
	"talentmatch/internal/notify"
	"talentmatch/internal/notify/noop"
)

func TestNew_Noop(t *testing.T) {
	for _, p := range []string{"", "noop"} {
		n, err := notify.New(&config.NotifyConfig{Provider: p})
		require.NoError(t, err)
		assert.IsType(t, &noop.Notifier{}, n)
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := notify.New(&config.NotifyConfig{Provider: "kafka"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka")
}
