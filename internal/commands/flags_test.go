package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")

	got := DefaultConfigPath()
	assert.Equal(t, filepath.Join("/tmp/xdg-config", "annoforge", "config.yaml"), got)
}

func TestDefaultConfigPath_Fallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/tester")

	got := DefaultConfigPath()
	assert.Equal(t, filepath.Join("/home/tester", ".config", "annoforge", "config.yaml"), got)
}

func TestDefaultDataDir_XDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	got := DefaultDataDir()
	assert.Equal(t, filepath.Join("/tmp/xdg-data", "annoforge"), got)
}

func TestDefaultDataDir_Fallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/tester")

	got := DefaultDataDir()
	assert.Equal(t, filepath.Join("/home/tester", ".local", "share", "annoforge"), got)
}

func TestValidateRequired(t *testing.T) {
	v := validateRequired("name")

	assert.Error(t, v(""))
	assert.Error(t, v("   "))
	assert.NoError(t, v("my project"))
}
