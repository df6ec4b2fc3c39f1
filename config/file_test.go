package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var originalFnCreateAppHomeDir = FnDefaultCreateAppHomeDirAndGetConfigFilePath

func useTempHomeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	FnDefaultCreateAppHomeDirAndGetConfigFilePath = func(fileName string) (string, error) {
		return filepath.Join(dir, fileName), nil
	}
	t.Cleanup(func() {
		FnDefaultCreateAppHomeDirAndGetConfigFilePath = originalFnCreateAppHomeDir
	})
	return dir
}

func TestSafeWriteViaTemp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.yaml")

	err := SafeWriteViaTemp(target, "first")
	assert.NoError(t, err, "SafeWriteViaTemp failed on a new file")
	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "first", string(b))

	// Overwrites atomically; no temp file left behind.
	err = SafeWriteViaTemp(target, "second")
	assert.NoError(t, err, "SafeWriteViaTemp failed on overwrite")
	b, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))
	_, err = os.Stat(target + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should have been renamed away")
}

type testConfig struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestGetConfigCreatesMissingFile(t *testing.T) {
	dir := useTempHomeDir(t)
	mu := &sync.Mutex{}

	cfg, err := GetConfig[testConfig](mu, "test.yaml", func() testConfig { return testConfig{} })
	assert.NoError(t, err, "GetConfig failed for a missing file")
	assert.Equal(t, testConfig{}, cfg, "missing file should yield the zero value")

	_, err = os.Stat(filepath.Join(dir, "test.yaml"))
	assert.NoError(t, err, "GetConfig should have created an empty file")
}

func TestSetThenGetConfigRoundTrip(t *testing.T) {
	useTempHomeDir(t)
	mu := &sync.Mutex{}

	var inMemory testConfig
	want := testConfig{Name: "tracker", Count: 3}
	err := SetConfig[testConfig](mu, "test.yaml",
		func(v testConfig) error { return nil },
		func(v testConfig) { inMemory = v },
		want,
	)
	assert.NoError(t, err, "SetConfig failed")
	assert.Equal(t, want, inMemory, "SetConfig did not update in-memory state")

	got, err := GetConfig[testConfig](mu, "test.yaml", func() testConfig { return testConfig{} })
	assert.NoError(t, err, "GetConfig failed after SetConfig")
	assert.Equal(t, want, got, "config did not round-trip")
}

func TestSetConfigValidationFailureDoesNotWrite(t *testing.T) {
	dir := useTempHomeDir(t)
	mu := &sync.Mutex{}

	err := SetConfig[testConfig](mu, "test.yaml",
		func(v testConfig) error { return assert.AnError },
		nil,
		testConfig{Name: "bad"},
	)
	assert.Error(t, err, "SetConfig should surface validation errors")
	_, statErr := os.Stat(filepath.Join(dir, "test.yaml"))
	assert.True(t, os.IsNotExist(statErr), "failed validation must not write the file")
}
