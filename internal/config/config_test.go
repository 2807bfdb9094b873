package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-docx-md/pkg/document"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "media", cfg.MediaDir)
	assert.False(t, cfg.Debug)
	assert.NotEmpty(t, cfg.HistoryFile)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docxmd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("media_dir: assets\ndebug: true\nprofile: contract\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "assets", cfg.MediaDir)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "contract", cfg.Profile)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

const profileSample = `
[profiles.contract]
document_style = "k"
paper_size = "A4"
font_size = 10.5

[profiles.wide]
paper_size = "A3L"
`

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(path, []byte(profileSample), 0o644))
	return path
}

func TestApplyProfile(t *testing.T) {
	path := writeProfiles(t)

	form := document.NewForm()
	require.NoError(t, ApplyProfile(path, "contract", form))

	assert.Equal(t, "k", form.DocumentStyle)
	assert.Equal(t, 10.5, form.FontSize)
	// Keys the profile leaves out keep their defaults.
	assert.Equal(t, document.DefaultLineSpacing, form.LineSpacing)
	assert.Equal(t, document.DefaultMinchoFont, form.MinchoFont)
}

func TestApplyProfileUnknown(t *testing.T) {
	path := writeProfiles(t)

	err := ApplyProfile(path, "nope", document.NewForm())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract")
	assert.Contains(t, err.Error(), "wide")
}

func TestListProfiles(t *testing.T) {
	path := writeProfiles(t)

	names, err := ListProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"contract", "wide"}, names)
}
