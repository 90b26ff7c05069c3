package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"drillsheet/internal/app"
	"drillsheet/internal/config"
	"drillsheet/internal/shared/testutil"
)

// useTestApp makes commands build their application in a temporary base
// directory with a test logger. It returns the base directory.
func useTestApp(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	base := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	original := newApplication
	newApplication = func() (*app.Application, error) {
		cfg := config.Default()
		cfg.Paths.BaseDir = base
		if mutate != nil {
			mutate(cfg)
		}
		return app.New(cfg, logger)
	}
	t.Cleanup(func() { newApplication = original })
	return base
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	parseFormat, parseOut = formatJSON, ""
	importWorkers, importExport = 0, false
	serveAddr, versionShort = "", false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	require.Equal(t, "drillsheet", rootCmd.Use)
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}
