package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSearchesUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("workers: 3\nskipMalformed: true\nlabels:\n  loop-calculation: LOOPC\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, path, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), path)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.SkipMalformed)
	assert.Equal(t, "LOOPC", cfg.Labels["loop-calculation"])
	assert.Equal(t, DefaultInclude, cfg.Include, "unset fields keep defaults")
	assert.Equal(t, DefaultEndpoint, cfg.Crawler.Endpoint)
}

func TestLoadFileFillsZeroValues(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte("include: \"\"\nworkers: 0\ncrawler:\n  requestsPerSecond: 0\n"), 0o644))

	cfg, err := LoadFile(p)
	require.NoError(t, err)
	d := Default()
	assert.Equal(t, d.Include, cfg.Include)
	assert.Equal(t, d.Workers, cfg.Workers)
	assert.Equal(t, DefaultRequestsPerSecond, cfg.Crawler.RequestsPerSecond)
}

func TestLoadFileRejectsBadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte("workers: [unclosed"), 0o644))
	_, err := LoadFile(p)
	assert.ErrorContains(t, err, "config: parse")
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.RankTable = "ranks.json"
	path, err := Write(dir, cfg)
	require.NoError(t, err)

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestAPIKeyFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(APIKeyEnv+"=from-file\n"), 0o644))

	prev, had := os.LookupEnv(APIKeyEnv)
	require.NoError(t, os.Unsetenv(APIKeyEnv))
	t.Cleanup(func() {
		if had {
			os.Setenv(APIKeyEnv, prev) //nolint:errcheck
		} else {
			os.Unsetenv(APIKeyEnv) //nolint:errcheck
		}
	})

	assert.Equal(t, "from-file", APIKey(filepath.Join(dir, "missing"), dir))

	t.Setenv(APIKeyEnv, "from-env")
	assert.Equal(t, "from-env", APIKey(dir), "existing variables are not overridden")
}
