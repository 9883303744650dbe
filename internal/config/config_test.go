package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"template", "script", "style", "textarea"}, cfg.BlankTags)
}

func TestProfile(t *testing.T) {
	for _, name := range Profiles() {
		cfg, err := Profile(name)
		require.NoError(t, err, name)
		require.NoError(t, cfg.Validate(), name)
	}

	raw, err := Profile("RAW")
	require.NoError(t, err)
	assert.False(t, raw.Trim)
	assert.Empty(t, raw.BlankTags)

	doc, err := Profile("document")
	require.NoError(t, err)
	assert.True(t, doc.ImpliedStructure)
	assert.False(t, doc.WrapMultipleRoots)

	_, err = Profile("outlook")
	assert.Error(t, err)
}

func TestLoad_Formats(t *testing.T) {
	want := Default()
	want.Trim = false
	want.BlankTags = []string{"script"}
	want.LogLevel = "debug"

	files := map[string]string{
		"htmldoc.yaml": "trim: false\nblank_tags: [script]\nlog_level: debug\n",
		"htmldoc.json": "{\n  // comments are fine\n  \"trim\": false,\n  \"blank_tags\": [\"script\"],\n  \"log_level\": \"debug\",\n}\n",
		"htmldoc.toml": "trim = false\nblank_tags = [\"script\"]\nlog_level = \"debug\"\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			got, err := Load(writeFile(t, name, content))
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_ProfileBase(t *testing.T) {
	got, err := Load(writeFile(t, "htmldoc.yml", "profile: raw\ntrim: true\n"))
	require.NoError(t, err)

	assert.Equal(t, "raw", got.Profile)
	assert.True(t, got.Trim)
	assert.False(t, got.InjectDoctype)
	assert.Empty(t, got.BlankTags)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{name: "unknown extension", file: "htmldoc.ini", content: "trim=false"},
		{name: "bad yaml", file: "htmldoc.yaml", content: "trim: [\n"},
		{name: "bad blank tag", file: "htmldoc.yaml", content: "blank_tags: ['<script>']\n"},
		{name: "bad level", file: "htmldoc.json", content: `{"log_level": "loud"}`},
		{name: "negative size", file: "htmldoc.toml", content: "max_output_size = -1\n"},
		{name: "unknown profile", file: "htmldoc.yaml", content: "profile: outlook\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLevel(t *testing.T) {
	level, err := Config{}.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, level)

	level, err = Config{LogLevel: "warn"}.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, level)
}
