package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile_SetsVariables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.env")
	require.NoError(t, os.WriteFile(path, []byte("DATAVERSE_CLIENT_SECRET=s3cret\n"), 0600))
	t.Setenv("DATAVERSE_CLIENT_SECRET", "")
	os.Unsetenv("DATAVERSE_CLIENT_SECRET")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "s3cret", os.Getenv("DATAVERSE_CLIENT_SECRET"))
}

func TestLoadEnvFile_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.env")
	require.NoError(t, os.WriteFile(path, []byte("DATAVERSE_CLIENT_SECRET=from-file\n"), 0600))
	t.Setenv("DATAVERSE_CLIENT_SECRET", "from-env")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("DATAVERSE_CLIENT_SECRET"))
}

func TestLoadEnvFile_ExplicitMissingFileErrors(t *testing.T) {
	err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestLoadEnvFile_DefaultMissingFileIgnored(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(cwd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	assert.NoError(t, LoadEnvFile(""))
}
