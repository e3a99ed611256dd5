package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "default is info",
			config: Config{},
			want:   "info",
		},
		{
			name:   "verbose enables debug",
			config: Config{Verbose: true},
			want:   "debug",
		},
		{
			name:   "quiet suppresses everything below error",
			config: Config{Quiet: true},
			want:   "error",
		},
		{
			name:   "explicit level wins over verbose",
			config: Config{Verbose: true, LogLevel: "warn"},
			want:   "warn",
		},
		{
			name:   "verbose wins over quiet",
			config: Config{Verbose: true, Quiet: true},
			want:   "debug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveLogLevel(&tt.config))
		})
	}
}
