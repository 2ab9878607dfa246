package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvDefaults(t *testing.T) {
	t.Setenv("PUNCHME_TEST_STR", "")
	t.Setenv("PUNCHME_TEST_INT", "not-a-number")
	t.Setenv("PUNCHME_TEST_DUR", "15m")
	t.Setenv("PUNCHME_TEST_LIST", " a, ,b ")

	assert.Equal(t, "fallback", GetEnv("PUNCHME_TEST_STR", "fallback"))
	assert.Equal(t, 7, GetEnvInt("PUNCHME_TEST_INT", 7))
	assert.Equal(t, 15*time.Minute, GetEnvDuration("PUNCHME_TEST_DUR", time.Minute))
	assert.Equal(t, []string{"a", "b"}, GetEnvList("PUNCHME_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, GetEnvList("PUNCHME_TEST_UNSET_LIST", []string{"x"}))
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PUNCHME_TEST_FROM_FILE=yes\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PUNCHME_TEST_FROM_FILE") })

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "yes", GetEnv("PUNCHME_TEST_FROM_FILE", ""))
}
