package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single segment", "server", []string{"server"}, false},
		{"two segments", "server.origin", []string{"server", "origin"}, false},
		{"three segments", "hooks.messageReceived.0", []string{"hooks", "messageReceived", "0"}, false},
		{"empty", "", nil, true},
		{"empty segment", "server..origin", nil, true},
		{"leading dot", ".server", nil, true},
		{"trailing dot", "server.", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGetValueAtPath(t *testing.T) {
	root := map[string]any{
		"server": map[string]any{
			"origin": "http://localhost:8000",
			"tuning": map[string]any{
				"buffer": 64,
			},
		},
		"simple": "value",
	}

	tests := []struct {
		name string
		path []string
		want any
		ok   bool
	}{
		{"nested value", []string{"server", "origin"}, "http://localhost:8000", true},
		{"deeply nested", []string{"server", "tuning", "buffer"}, 64, true},
		{"top level", []string{"simple"}, "value", true},
		{"missing key", []string{"nonexistent"}, nil, false},
		{"missing nested", []string{"server", "nonexistent"}, nil, false},
		{"non-map intermediate", []string{"simple", "sub"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, ok := GetValueAtPath(root, tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, val)
			}
		})
	}
}

func TestSetValueAtPath_CreatesIntermediates(t *testing.T) {
	root := map[string]any{}

	SetValueAtPath(root, []string{"a", "b", "c"}, "deep")
	val, ok := GetValueAtPath(root, []string{"a", "b", "c"})
	assert.True(t, ok)
	assert.Equal(t, "deep", val)
}

func TestSetValueAtPath_OverwritesNonMap(t *testing.T) {
	root := map[string]any{
		"server": "string-not-map",
	}

	SetValueAtPath(root, []string{"server", "eventBuffer"}, 32)
	val, ok := GetValueAtPath(root, []string{"server", "eventBuffer"})
	assert.True(t, ok)
	assert.Equal(t, 32, val)
}

func TestUnsetValueAtPath(t *testing.T) {
	root := map[string]any{
		"server": map[string]any{
			"origin":      "http://localhost:8000",
			"eventBuffer": 64,
		},
		"flat": "x",
	}

	assert.True(t, UnsetValueAtPath(root, []string{"server", "origin"}))
	_, found := GetValueAtPath(root, []string{"server", "origin"})
	assert.False(t, found)

	val, found := GetValueAtPath(root, []string{"server", "eventBuffer"})
	assert.True(t, found)
	assert.Equal(t, 64, val)

	assert.False(t, UnsetValueAtPath(root, []string{"server", "nonexistent"}))
	assert.False(t, UnsetValueAtPath(root, []string{"a", "b"}))
	assert.False(t, UnsetValueAtPath(root, []string{"flat", "sub"}))
}

func TestResolvePaths_Default(t *testing.T) {
	t.Setenv("AGENTCHAT_HOME", "")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".agentchat"), paths.Base)
	assert.Equal(t, filepath.Join(home, ".agentchat", "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(home, ".agentchat", "data"), paths.Data)
	assert.Equal(t, filepath.Join(home, ".agentchat", "logs"), paths.Logs)
}

func TestResolvePaths_CustomHome(t *testing.T) {
	t.Setenv("AGENTCHAT_HOME", "/tmp/agentchat-test")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/agentchat-test", paths.Base)
	assert.Equal(t, "/tmp/agentchat-test/config.yaml", paths.Config)
	assert.Equal(t, "/tmp/agentchat-test/data", paths.Data)
	assert.Equal(t, "/tmp/agentchat-test/logs", paths.Logs)
}

func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()
	paths := Paths{
		Base: tmpDir,
		Data: filepath.Join(tmpDir, "data"),
		Logs: filepath.Join(tmpDir, "logs"),
	}

	require.NoError(t, paths.EnsureDirs())
	require.NoError(t, paths.EnsureDirs()) // second call should succeed

	for _, dir := range []string{paths.Base, paths.Data, paths.Logs} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestStoragePath(t *testing.T) {
	paths := Paths{Data: "/var/agentchat/data"}
	assert.Equal(t, "/var/agentchat/data/agentchat.db", paths.StoragePath(StorageConfig{}))
	assert.Equal(t, "/srv/prefs.db", paths.StoragePath(StorageConfig{Path: "/srv/prefs.db"}))
}

func TestLogFile(t *testing.T) {
	paths := Paths{Logs: "/var/agentchat/logs"}
	assert.Equal(t, "", paths.LogFile(LoggingConfig{}, false))
	assert.Equal(t, "/var/agentchat/logs/agentchat.log", paths.LogFile(LoggingConfig{}, true))
	assert.Equal(t, "/tmp/x.log", paths.LogFile(LoggingConfig{File: "/tmp/x.log"}, true))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data", "x.db"), ExpandHome("~/data/x.db"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "~other/path", ExpandHome("~other/path"))
}
