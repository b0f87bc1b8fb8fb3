package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhangming/respflow/config"
)

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resp.conf")
	contents := "bind: 127.0.0.1\nport: 6400\nmax-clients: 500\nmax-inline-size: 8192\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	require.NoError(t, config.Load(path))
	require.Equal(t, "127.0.0.1", config.Properties.Bind)
	require.Equal(t, 6400, config.Properties.Port)
	require.Equal(t, 500, config.Properties.MaxClients)
	require.Equal(t, 8192, config.Properties.MaxInlineSize)
}

func TestLoadMissingFile(t *testing.T) {
	err := config.Load(filepath.Join(t.TempDir(), "missing.conf"))
	require.Error(t, err)
}
