package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/unkn0wn-root/assembly/internal/errdef"
)

// Settings mirrors settings.toml.
type Settings struct {
	Defaults Defaults `toml:"defaults"`
	Publish  Publish  `toml:"publish"`
	Install  Install  `toml:"install"`
	Log      Log      `toml:"log"`
}

// Defaults pre-selects prompt answers. A nil Features keeps every feature
// checked; a non-nil empty list (`features = []`) unchecks them all.
type Defaults struct {
	Preprocessor string    `toml:"preprocessor,omitempty"`
	Framework    string    `toml:"framework,omitempty"`
	Features     *[]string `toml:"features,omitempty"`
	VCS          string    `toml:"vcs,omitempty"`
	Account      string    `toml:"account,omitempty"`
}

// SetFeatures records an explicit feature selection, empty included.
func (d *Defaults) SetFeatures(items []string) {
	list := append([]string{}, items...)
	d.Features = &list
}

// FeatureList returns nil when no selection was configured and a non-nil
// list otherwise.
func (d Defaults) FeatureList() []string {
	if d.Features == nil {
		return nil
	}
	return append([]string{}, *d.Features...)
}

type Publish struct {
	Backend     string `toml:"backend"`
	FailFast    bool   `toml:"fail_fast"`
	Branch      string `toml:"branch"`
	AuthorName  string `toml:"author_name,omitempty"`
	AuthorEmail string `toml:"author_email,omitempty"`
}

type Install struct {
	Run bool `toml:"run"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Publish: Publish{Backend: "go-git", Branch: "main"},
		Log:     Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error; unknown
// keys are.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, errdef.Wrap(errdef.CodeSettings, err, "read %s", path)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return s, errdef.New(errdef.CodeSettings, "%s:%d:%d: %s", path, row, col, derr.Error())
		}
		return s, errdef.Wrap(errdef.CodeSettings, err, "parse %s", path)
	}
	return s, nil
}

// Encode renders s as settings.toml content.
func Encode(s Settings) ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeSettings, err, "encode settings")
	}
	return data, nil
}

// Save writes s to path through a temp file and rename, creating the parent
// directory.
func Save(path string, s Settings) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errdef.Wrap(errdef.CodeSettings, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errdef.Wrap(errdef.CodeSettings, err, "write %s", path)
	}
	name := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(name)
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errdef.Wrap(errdef.CodeSettings, err, "write %s", path)
	}
	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return errdef.Wrap(errdef.CodeSettings, err, "write %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errdef.Wrap(errdef.CodeSettings, err, "write %s", path)
	}
	if err = os.Rename(name, path); err != nil {
		return errdef.Wrap(errdef.CodeSettings, err, "replace %s", path)
	}
	return nil
}
