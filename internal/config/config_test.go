package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	be.Err(t, err, nil)
	be.Equal(t, *cfg, Config{})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
account = "me@example.com"
max_messages = 25
workers = 4

[style]
heading_fg = "#ff0000"
`
	be.Err(t, os.WriteFile(path, []byte(data), 0o600), nil)

	cfg, err := LoadFile(path)
	be.Err(t, err, nil)
	be.Equal(t, cfg.Account, "me@example.com")
	be.Equal(t, cfg.MaxMessages, 25)
	be.Equal(t, cfg.Workers, 4)
	be.Equal(t, cfg.Style.HeadingFg, "#ff0000")
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	be.Err(t, os.WriteFile(path, []byte("max_messages = ["), 0o600), nil)

	_, err := LoadFile(path)
	be.Err(t, err)
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	in := &Config{Account: "a@x.com", MaxMessages: 3, EnvFile: ".env"}
	be.Err(t, SaveFile(path, in), nil)

	out, err := LoadFile(path)
	be.Err(t, err, nil)
	be.Equal(t, *out, *in)
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{Workers: -2}.WithDefaults()
	be.Equal(t, cfg.MaxMessages, DefaultMaxMessages)
	be.Equal(t, cfg.Workers, 0)
	be.Equal(t, cfg.Style.HeadingFg, "12")

	cfg = Config{MaxMessages: 5, Style: Style{DimFg: "240"}}.WithDefaults()
	be.Equal(t, cfg.MaxMessages, 5)
	be.Equal(t, cfg.Style.DimFg, "240")
}
