package glcontext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigFormat identifies the encoding of a config document.
type ConfigFormat int

const (
	// FormatTOML is a TOML document with options as top-level keys.
	FormatTOML ConfigFormat = iota
	// FormatYAML is a YAML mapping with options as top-level keys.
	FormatYAML
)

func (f ConfigFormat) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("ConfigFormat(%d)", int(f))
	}
}

// DecodeConfig decodes a config document and validates it with
// ValidateConfig. Options missing from the document keep their defaults.
//
// Example document (TOML):
//
//	double_buffer = false
//	depth_size = 16
//	color_format = "bgra8unorm"
func DecodeConfig(data []byte, format ConfigFormat) (Config, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("glcontext: decode %v config: %w", format, err)
	}
	return ValidateConfig(raw)
}

// LoadConfig reads and validates the config file at path. The encoding is
// chosen by extension: .toml, .yaml or .yml.
func LoadConfig(path string) (Config, error) {
	var format ConfigFormat
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		format = FormatTOML
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("glcontext: read config: %w", err)
	}
	cfg, err := DecodeConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
