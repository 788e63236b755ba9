package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pileup-backend/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("FIELD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 6, cfg.RobotCount)
	assert.Equal(t, models.DefaultField(), cfg.Field)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, 50, cfg.LogFlushSize)
	assert.Equal(t, 10*time.Second, cfg.RobotTimeout)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.yaml")
	require.NoError(t, os.WriteFile(path, []byte("field:\n  length: 12\n  width: 9\n"), 0o644))

	t.Setenv("FIELD_CONFIG", path)
	t.Setenv("FIELD_WIDTH", "8")
	t.Setenv("ROBOT_COUNT", "3")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("RANDOM_SEED", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 12.0, cfg.Field.Length)
	assert.Equal(t, 8.0, cfg.Field.Width)
	assert.Equal(t, 0.09, cfg.Field.RobotRadius)
	assert.Equal(t, 3, cfg.RobotCount)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, int64(7), cfg.Seed)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("FIELD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	t.Setenv("FIELD_LENGTH", "abc")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("FIELD_LENGTH", "9")
	t.Setenv("ROBOT_COUNT", "six")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RejectsBadGeometry(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FIELD_LENGTH", "0"},
		{"FIELD_LENGTH", "-9"},
		{"FIELD_LENGTH", "NaN"},
		{"FIELD_LENGTH", "Inf"},
		{"FIELD_WIDTH", "NaN"},
		{"FIELD_WIDTH", "+Inf"},
		{"ROBOT_RADIUS", "NaN"},
		{"BALL_RADIUS", "-0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("FIELD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.ErrorIs(t, err, models.ErrInvalidGeometry)
		})
	}
}

func TestLoadConfig_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"ROBOT_COUNT", "-1"},
		{"LOG_FLUSH_SIZE", "0"},
		{"ROBOT_SPEED", "0"},
		{"ROBOT_SPEED", "NaN"},
		{"GRID_CELL_SIZE", "0"},
		{"GRID_CELL_SIZE", "-0.1"},
		{"GRID_CELL_SIZE", "NaN"},
		{"ROBOT_TIMEOUT", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("FIELD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig_RobotTimeout(t *testing.T) {
	t.Setenv("FIELD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("ROBOT_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.RobotTimeout)

	t.Setenv("ROBOT_TIMEOUT", "soon")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadFieldFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("field: [unclosed"), 0o644))
	_, err := LoadFieldFile(bad)
	assert.Error(t, err)

	neg := filepath.Join(dir, "neg.yaml")
	require.NoError(t, os.WriteFile(neg, []byte("field:\n  width: -1\n"), 0o644))
	_, err = LoadFieldFile(neg)
	assert.ErrorIs(t, err, models.ErrInvalidGeometry)

	_, err = LoadFieldFile(filepath.Join(dir, "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
