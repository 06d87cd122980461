package glcontext

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"
)

// Recognized config option names.
const (
	OptionRedSize      = "red_size"
	OptionGreenSize    = "green_size"
	OptionBlueSize     = "blue_size"
	OptionAlphaSize    = "alpha_size"
	OptionDepthSize    = "depth_size"
	OptionStencilSize  = "stencil_size"
	OptionDoubleBuffer = "double_buffer"
	OptionStereo       = "stereo"
	OptionSamples      = "samples"
	OptionColorFormat  = "color_format"
)

// optionKind is the declared value type of a config option.
type optionKind int

const (
	kindBool optionKind = iota
	kindSize            // non-negative integer
	kindFormat          // gputypes.TextureFormat
)

func (k optionKind) String() string {
	switch k {
	case kindBool:
		return "bool"
	case kindSize:
		return "non-negative int"
	case kindFormat:
		return "gputypes.TextureFormat"
	default:
		return "unknown"
	}
}

var optionKinds = map[string]optionKind{
	OptionRedSize:      kindSize,
	OptionGreenSize:    kindSize,
	OptionBlueSize:     kindSize,
	OptionAlphaSize:    kindSize,
	OptionDepthSize:    kindSize,
	OptionStencilSize:  kindSize,
	OptionDoubleBuffer: kindBool,
	OptionStereo:       kindBool,
	OptionSamples:      kindSize,
	OptionColorFormat:  kindFormat,
}

// formatNames are the textual spellings of color_format accepted from
// config files.
var formatNames = map[string]gputypes.TextureFormat{
	"rgba8unorm": gputypes.TextureFormatRGBA8Unorm,
	"bgra8unorm": gputypes.TextureFormatBGRA8Unorm,
}

// Config maps recognized option names to their values. A Config returned
// by this package always holds every recognized option and is never shared
// with another Config or with the defaults.
type Config map[string]any

// DefaultConfig returns the default value of every recognized option.
// Each call returns a new map.
func DefaultConfig() Config {
	return Config{
		OptionRedSize:      8,
		OptionGreenSize:    8,
		OptionBlueSize:     8,
		OptionAlphaSize:    8,
		OptionDepthSize:    24,
		OptionStencilSize:  0,
		OptionDoubleBuffer: true,
		OptionStereo:       false,
		OptionSamples:      0,
		OptionColorFormat:  gputypes.TextureFormatRGBA8Unorm,
	}
}

// OptionNames returns the recognized option names in sorted order.
func OptionNames() []string {
	return slices.Sorted(maps.Keys(optionKinds))
}

// ValidateConfig checks input against the recognized options and returns
// the defaults overlaid with it. A nil input yields the defaults.
//
// Unrecognized names fail with an *OptionError wrapping ErrUnknownOption and
// values of the wrong kind fail with one wrapping ErrTypeMismatch. Integer
// options accept any Go integer type and are stored as int.
func ValidateConfig(input map[string]any) (Config, error) {
	cfg := DefaultConfig()
	// Sorted so the reported error does not depend on map order.
	for _, name := range slices.Sorted(maps.Keys(input)) {
		value, err := normalizeOption(name, input[name])
		if err != nil {
			return nil, err
		}
		cfg[name] = value
	}
	return cfg, nil
}

func normalizeOption(name string, value any) (any, error) {
	kind, ok := optionKinds[name]
	if !ok {
		return nil, &OptionError{Option: name, Value: value, Err: ErrUnknownOption}
	}
	mismatch := &OptionError{Option: name, Value: value, Err: ErrTypeMismatch}

	switch kind {
	case kindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case kindSize:
		if n, ok := toSize(value); ok {
			return n, nil
		}
	case kindFormat:
		switch v := value.(type) {
		case gputypes.TextureFormat:
			return v, nil
		case string:
			if f, ok := formatNames[strings.ToLower(v)]; ok {
				return f, nil
			}
		}
	}
	return nil, mismatch
}

// toSize converts any Go integer to a non-negative int.
func toSize(value any) (int, bool) {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		if uint64(v) > math.MaxInt32 {
			return 0, false
		}
		n = int64(v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		if v > math.MaxInt32 {
			return 0, false
		}
		n = int64(v)
	default:
		return 0, false
	}
	if n < 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// Clone returns an independent copy of c. Option values are scalars, so a
// copy of the map does not alias c.
func (c Config) Clone() Config {
	return maps.Clone(c)
}

// Bool returns the named boolean option, or false if it is absent or not a
// bool.
func (c Config) Bool(name string) bool {
	b, _ := c[name].(bool)
	return b
}

// Int returns the named integer option, or 0 if it is absent or not an int.
func (c Config) Int(name string) int {
	n, _ := toSize(c[name])
	return n
}

// ColorFormat returns the color_format option.
func (c Config) ColorFormat() gputypes.TextureFormat {
	if f, ok := c[OptionColorFormat].(gputypes.TextureFormat); ok {
		return f
	}
	return gputypes.TextureFormatUndefined
}
