package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ModelDirEnv names the environment variable holding the default model
// directory.
const ModelDirEnv = "SENTSPLIT_MODEL_DIR"

// File is a decoded override file: one table per language code.
type File map[string]Overrides

// LoadFile reads a TOML override file. Keys that match no setting are
// returned separately so callers can warn about them.
func LoadFile(path string) (File, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config file: %w", err)
	}
	f, unknown, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, unknown, nil
}

// Decode parses TOML override data.
func Decode(data []byte) (File, []string, error) {
	var f File
	err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&f)
	if err == nil {
		return normalizeKeys(f), nil, nil
	}

	var strict *toml.StrictMissingError
	if !errors.As(err, &strict) {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	unknown := make([]string, 0, len(strict.Errors))
	for _, e := range strict.Errors {
		unknown = append(unknown, strings.Join(e.Key(), "."))
	}

	f = nil
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return normalizeKeys(f), unknown, nil
}

// For returns the overrides for lang, if the file has a table for it.
func (f File) For(lang string) (Overrides, bool) {
	o, ok := f[Normalize(lang)]
	return o, ok
}

func normalizeKeys(f File) File {
	out := make(File, len(f))
	for lang, o := range f {
		norm := Normalize(lang)
		out[norm] = out[norm].Merge(o)
	}
	return out
}

// Encode renders c as a TOML table under lang.
func Encode(lang string, c Config) ([]byte, error) {
	return toml.Marshal(map[string]Config{Normalize(lang): c})
}

// Locate resolves a model reference. An existing path is used as given;
// otherwise the reference is looked up relative to dir.
func Locate(ref, dir string) (string, error) {
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	if dir != "" && !filepath.IsAbs(ref) {
		p := filepath.Join(dir, ref)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		// crf_models/en.model may also sit directly in dir
		p = filepath.Join(dir, filepath.Base(ref))
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%q: %w", ref, os.ErrNotExist)
}

// DefaultModelDir returns the model directory from the environment.
func DefaultModelDir() string {
	return os.Getenv(ModelDirEnv)
}
