package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env and no file",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, *Default(), *cfg)
			},
		},
		{
			name: "env overrides defaults",
			env: map[string]string{
				"DRILLSHEET_SERVER_PORT":                "9090",
				"DRILLSHEET_STORAGE_DRIVER":             "sqlite",
				"DRILLSHEET_PARSER_REPORT_DROPPED_ROWS": "true",
				"DRILLSHEET_IMPORT_WORKERS":             "8",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
				assert.True(t, cfg.Parser.ReportDroppedRows)
				assert.Equal(t, 8, cfg.Import.Workers)
				assert.Equal(t, 400, cfg.Parser.SeriesPageSize)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 7070
  read_timeout: 5s
parser:
  series_page_size: 250
storage:
  driver: sqlite
  dsn: /var/lib/drillsheet/records.db
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 250, cfg.Parser.SeriesPageSize)
				assert.Equal(t, "/var/lib/drillsheet/records.db", cfg.Storage.DSN)
				assert.Equal(t, DefaultImportWorkers, cfg.Import.Workers)
			},
		},
		{
			name: "env wins over file",
			env:  map[string]string{"DRILLSHEET_SERVER_PORT": "9191"},
			file: "server:\n  port: 7070\nimport:\n  workers: 2\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9191, cfg.Server.Port)
				assert.Equal(t, 2, cfg.Import.Workers)
			},
		},
		{
			name:    "unknown file key",
			file:    "parser:\n  page_size: 10\n",
			wantErr: "failed to load config from file",
		},
		{
			name:    "invalid port",
			env:     map[string]string{"DRILLSHEET_SERVER_PORT": "70000"},
			wantErr: "invalid server port",
		},
		{
			name:    "unknown storage driver",
			env:     map[string]string{"DRILLSHEET_STORAGE_DRIVER": "postgres"},
			wantErr: "unknown storage driver",
		},
		{
			name:    "zero workers",
			file:    "import:\n  workers: 0\n",
			wantErr: "import workers must be positive",
		},
		{
			name:    "invalid logging output",
			env:     map[string]string{"DRILLSHEET_LOGGING_OUTPUT": "syslog"},
			wantErr: "invalid logging output",
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"DRILLSHEET_IMPORT_WORKERS": "many"},
			wantErr: "failed to load config from env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_ExplicitConfigEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 6060\n")
	t.Setenv("DRILLSHEET_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.LogsDir = "/var/log/drillsheet"

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, "/var/log/drillsheet", paths.LogsDir)
	assert.Equal(t, filepath.Join(base, "data", "exports"), paths.ExportsDir)

	cfg.Paths.LogsDir = "logs"
	paths, err = cfg.ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	assert.True(t, FileExists(paths.DataDir))
	assert.True(t, FileExists(paths.LogsDir))
	assert.True(t, FileExists(paths.ExportsDir))
}

func TestSQLiteDSN(t *testing.T) {
	cfg := Default()
	paths := &Paths{BaseDir: "/srv/drillsheet"}

	assert.Equal(t, "/srv/drillsheet/data/drillsheet.db", cfg.SQLiteDSN(paths))

	cfg.Storage.DSN = ":memory:"
	assert.Equal(t, ":memory:", cfg.SQLiteDSN(paths))

	cfg.Storage.DSN = "file:test.db?cache=shared"
	assert.Equal(t, "file:test.db?cache=shared", cfg.SQLiteDSN(paths))
}
