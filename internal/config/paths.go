package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved, absolute application directories.
type Paths struct {
	BaseDir    string
	DataDir    string
	LogsDir    string
	ExportsDir string
}

// ResolvePaths makes every configured directory absolute. Relative
// directories hang off BaseDir, which itself is taken relative to the
// working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	base, err := filepath.Abs(c.Paths.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir: %w", err)
	}
	return &Paths{
		BaseDir:    base,
		DataDir:    resolve(base, c.Paths.DataDir),
		LogsDir:    resolve(base, c.Paths.LogsDir),
		ExportsDir: resolve(base, c.Paths.ExportsDir),
	}, nil
}

// Resolve makes p absolute against BaseDir.
func (p *Paths) Resolve(path string) string {
	return resolve(p.BaseDir, path)
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// EnsureDirectories creates all application directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()
	for _, dir := range []string{p.DataDir, p.LogsDir, p.ExportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// SQLiteDSN returns the storage DSN with relative file paths resolved.
// In-memory and URI DSNs are returned unchanged.
func (c *Config) SQLiteDSN(p *Paths) string {
	dsn := c.Storage.DSN
	if dsn == ":memory:" || len(dsn) >= 5 && dsn[:5] == "file:" {
		return dsn
	}
	return p.Resolve(dsn)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
