package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid_balance_simulator/internal/analysis"
	"grid_balance_simulator/internal/config"
)

func TestLoadParams_Defaults(t *testing.T) {
	p, err := loadParams("", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), p)
}

func TestLoadParams_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fps: 4\nseed: 9\n"), 0o644))

	p, err := loadParams(path, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, p.FPS)
	assert.Equal(t, uint64(9), p.Seed)

	p, err = loadParams(path, 123, 20)
	require.NoError(t, err)
	assert.Equal(t, 20.0, p.FPS)
	assert.Equal(t, uint64(123), p.Seed)
}

func TestLoadParams_Invalid(t *testing.T) {
	_, err := loadParams("", 0, -1)
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = loadParams(filepath.Join(t.TempDir(), "missing.yaml"), 0, 0)
	assert.Error(t, err)
}

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"wildcard", "*", []string{"*"}},
		{"list", "http://a.local, http://b.local", []string{"http://a.local", "http://b.local"}},
		{"empty entries", ",http://a.local,,", []string{"http://a.local"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitOrigins(tt.in))
		})
	}
}

func TestLogReport(t *testing.T) {
	assert.NotPanics(t, func() {
		logReport(analysis.Build("r", nil, config.Default()))
	})
}
