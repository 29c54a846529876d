package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestFiles(t *testing.T) {
	assert.Equal(t, []string{".env"}, Files(""))
	assert.Equal(t, []string{".env.dev.local", ".env.dev", ".env"}, Files(" DEV "))
}

func TestLoadMostSpecificFileWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "STOREFRONT_TEST_DEBOUNCE=300ms\nSTOREFRONT_TEST_BASE=/products\n")
	writeFile(t, dir, ".env.dev", "STOREFRONT_TEST_DEBOUNCE=50ms\n")

	t.Setenv(AppEnvKey, "dev")
	t.Setenv("STOREFRONT_TEST_DEBOUNCE", "")
	t.Setenv("STOREFRONT_TEST_BASE", "")
	require.NoError(t, os.Unsetenv("STOREFRONT_TEST_DEBOUNCE"))
	require.NoError(t, os.Unsetenv("STOREFRONT_TEST_BASE"))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, ".env.dev"), filepath.Join(dir, ".env")}, loaded)
	assert.Equal(t, "50ms", os.Getenv("STOREFRONT_TEST_DEBOUNCE"))
	assert.Equal(t, "/products", os.Getenv("STOREFRONT_TEST_BASE"))
}

func TestLoadKeepsProcessEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "STOREFRONT_TEST_PORT=9999\n")

	t.Setenv(AppEnvKey, "")
	t.Setenv("STOREFRONT_TEST_PORT", "8080")

	_, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "8080", os.Getenv("STOREFRONT_TEST_PORT"))
}

func TestLoadWithoutFiles(t *testing.T) {
	t.Setenv(AppEnvKey, "prod")

	loaded, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
