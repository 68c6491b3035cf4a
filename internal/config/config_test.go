package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Len(t, cfg.CustomerIDs, 5)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 0.5, cfg.GainProbability)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("NESSIE_CUSTOMER_IDS", " c1 , ,c2")
	t.Setenv("REMOTE_TIMEOUT", "3s")
	t.Setenv("GAIN_PROBABILITY", "0.7")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, cfg.CustomerIDs)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 0.7, cfg.GainProbability)
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"JWT_SECRET", ""},
		{"NESSIE_CUSTOMER_IDS", " , "},
		{"GAIN_PROBABILITY", "1.5"},
		{"REMOTE_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}
