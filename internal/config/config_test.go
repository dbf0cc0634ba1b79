/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.InMemory)
	assert.False(t, cfg.CreateTableIfNotExists)
	require.NoError(t, cfg.Validate())
}

func TestAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 6000
	assert.Equal(t, "0.0.0.0:6000", cfg.Addr())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 0
	cfg.LogLevel = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
	assert.Contains(t, err.Error(), "invalid log_level")
}

func TestValidateDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = ""
	require.Error(t, cfg.Validate())

	cfg.InMemory = true
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emberdb.yaml")
	content := `
host: 0.0.0.0
port: 6432
data_dir: /tmp/emberdb-test
log_level: debug
discovery_enabled: true
create_table_if_not_exists: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m := NewManager()
	require.NoError(t, m.LoadFromFile(path))

	cfg := m.Get()
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 6432, cfg.Port)
	assert.Equal(t, "/tmp/emberdb-test", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DiscoveryEnabled)
	assert.True(t, cfg.CreateTableIfNotExists)
	assert.Equal(t, path, cfg.ConfigFile)
	// Values absent from the file keep their defaults.
	assert.False(t, cfg.LogJSON)
}

func TestLoadFromFileMissing(t *testing.T) {
	m := NewManager()
	require.Error(t, m.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emberdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 6432\n"), 0644))

	t.Setenv(EnvPort, "7000")
	t.Setenv(EnvInMemory, "true")
	t.Setenv(EnvLogJSON, "1")

	m := NewManager()
	require.NoError(t, m.LoadFromFile(path))
	m.LoadFromEnv()

	cfg := m.Get()
	assert.Equal(t, 7000, cfg.Port)
	assert.True(t, cfg.InMemory)
	assert.True(t, cfg.LogJSON)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "emberdb.yaml")

	cfg := DefaultConfig()
	cfg.Port = 9999
	cfg.Host = "10.0.0.1"
	require.NoError(t, cfg.SaveToFile(path))

	m := NewManager()
	require.NoError(t, m.LoadFromFile(path))
	loaded := m.Get()
	assert.Equal(t, 9999, loaded.Port)
	assert.Equal(t, "10.0.0.1", loaded.Host)
}

func TestGetReturnsCopy(t *testing.T) {
	m := NewManager()
	cfg := m.Get()
	cfg.Port = 1

	assert.Equal(t, 5432, m.Get().Port)
}
