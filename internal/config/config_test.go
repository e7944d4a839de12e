package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	// Keep a stray .env in the package directory out of the picture.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "file", c.Store)
	assert.Equal(t, filepath.Join(home, ".segmentator", "sessions"), c.SessionsDir)
	assert.Equal(t, 10, c.CategoricalMaxDistinct)
	assert.Equal(t, 20.0, c.OpenEndedMinLength)
	assert.Equal(t, 1.0, c.LikertMin)
	assert.Equal(t, 7.0, c.LikertMax)
	assert.Equal(t, "127.0.0.1:8080", c.ServerAddr)
	assert.Nil(t, c.DatasetOptions().MissingMarkers, "empty list keeps the built-in markers")
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SEGMENTATOR_LIKERT_MAX", "5")
	t.Setenv("SEGMENTATOR_LOG_LEVEL", "debug")
	t.Setenv("SEGMENTATOR_CORS_ORIGINS", "http://a.test,http://b.test")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5.0, c.ClassifierOptions().LikertMax)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)
}

func TestLoadEnvListSeparators(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want []string
	}{
		{"comma", "http://a.test,http://b.test", []string{"http://a.test", "http://b.test"}},
		{"comma and space", "http://a.test, http://b.test", []string{"http://a.test", "http://b.test"}},
		{"space", "http://a.test http://b.test", []string{"http://a.test", "http://b.test"}},
		{"single", "http://a.test", []string{"http://a.test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("SEGMENTATOR_CORS_ORIGINS", tt.env)
			t.Setenv("SEGMENTATOR_MISSING_MARKERS", "-,?")

			c, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.CORSOrigins)
			assert.Equal(t, []string{"-", "?"}, c.MissingMarkers)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("SEGMENTATOR_CATEGORICAL_MAX_DISTINCT=4\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("SEGMENTATOR_CATEGORICAL_MAX_DISTINCT") })

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, c.CategoricalMaxDistinct)
}

func TestSaveThenLoad(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Set("likert_max", "10"))
	require.NoError(t, c.Set("missing_markers", "-, ?"))
	require.NoError(t, c.Set("store", "Postgres"))
	require.NoError(t, Save(c, path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, back.LikertMax)
	assert.Equal(t, "postgres", back.Store)
	assert.Equal(t, []string{"-", "?"}, back.DatasetOptions().MissingMarkers)
}

func TestSetRejectsBadValues(t *testing.T) {
	c := &Global{Store: "file", LikertMin: 1, LikertMax: 7}
	assert.Error(t, c.Set("store", "redis"))
	assert.Error(t, c.Set("categorical_max_distinct", "-1"))
	assert.Error(t, c.Set("likert_min", "9"))
	assert.Error(t, c.Set("nope", "x"))
	assert.Error(t, c.Set("log_format", "xml"))
}
