package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/graphscope/pkg/client"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		envVars     map[string]string
		want        Config
		errorSubstr string
	}{
		{
			name: "defaults",
			want: Config{Endpoint: client.DefaultEndpoint, FPS: defaultFPS},
		},
		{
			name: "flags",
			args: []string{"-endpoint", "http://graphs:9000", "-fps", "60", "-log", "tui.log"},
			want: Config{Endpoint: "http://graphs:9000", FPS: 60, LogPath: "tui.log"},
		},
		{
			name:    "env",
			envVars: map[string]string{"GRAPHSCOPE_ENDPOINT": "http://env:1", "GRAPHSCOPE_FPS": "10"},
			want:    Config{Endpoint: "http://env:1", FPS: 10},
		},
		{
			name:    "flag beats env",
			args:    []string{"-fps", "20"},
			envVars: map[string]string{"GRAPHSCOPE_FPS": "10"},
			want:    Config{Endpoint: client.DefaultEndpoint, FPS: 20},
		},
		{
			name:        "zero fps",
			args:        []string{"-fps", "0"},
			errorSubstr: "fps must be between",
		},
		{
			name:        "too many fps",
			args:        []string{"-fps", "1000"},
			errorSubstr: "fps must be between",
		},
		{
			name:        "bad env fps",
			envVars:     map[string]string{"GRAPHSCOPE_FPS": "fast"},
			errorSubstr: "invalid GRAPHSCOPE_FPS",
		},
		{
			name:        "empty endpoint",
			args:        []string{"-endpoint", " "},
			errorSubstr: "endpoint cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig(tt.args)
			if tt.errorSubstr != "" {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.errorSubstr), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}
