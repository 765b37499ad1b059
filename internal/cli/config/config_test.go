package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultUpsertTable, cfg.UpsertTable)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_FromFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)

	content := []byte("dialect: postgres\nstate_path: custom/state.db\nverbose: true\nparams:\n  env: prod\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inkwell.yaml"), content, 0o644))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Dialect)
	assert.Equal(t, "custom/state.db", cfg.StatePath)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "prod", cfg.Params["env"])
	assert.Equal(t, "inkwell.yaml", GetConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)

	content := []byte("dialect: postgres\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inkwell.yaml"), content, 0o644))
	t.Setenv("INKWELL_DIALECT", "duckdb")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", cfg.Dialect)
}

func TestLoadConfig_FlagsOverrideEverything(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())
	t.Setenv("INKWELL_DIALECT", "duckdb")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "", "")
	flags.String("state", "", "")
	flags.String("table", "", "")
	require.NoError(t, flags.Parse([]string{
		"--dialect", "ansi",
		"--state", "flagged.db",
		"--table", "sqlpage_files",
	}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "ansi", cfg.Dialect)
	assert.Equal(t, "flagged.db", cfg.StatePath, "--state maps to state_path")
	assert.Equal(t, "sqlpage_files", cfg.UpsertTable, "--table maps to upsert_table")
}

func TestLoadConfig_UnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "postgres", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultDialect, cfg.Dialect, "unset flag defaults must not override")
}

func TestLoadConfig_ExplicitFileMissing(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	_, err := LoadConfig("does-not-exist.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist.yaml")
}

func TestGetLogger_FallsBackToDiscard(t *testing.T) {
	logger := GetLogger(context.Background())
	require.NotNil(t, logger)
}

// chdir changes the working directory for the duration of the test,
// restoring the previous directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}
