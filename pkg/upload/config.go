package upload

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Case is a filename case transformation applied when saving.
type Case string

const (
	CaseNone  Case = ""
	CaseUpper Case = "upper"
	CaseLower Case = "lower"
)

// Mode is a permission bit set parsed from octal text ("0755").
type Mode os.FileMode

// UnmarshalText parses octal permission bits so env values like "0640" work.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(strings.TrimSpace(string(text)), 8, 32)
	if err != nil {
		return fmt.Errorf("%w: mode %q: %v", ErrInvalidOption, text, err)
	}
	*m = Mode(v)
	return nil
}

// FileMode returns m as an os.FileMode.
func (m Mode) FileMode() os.FileMode {
	return os.FileMode(m)
}

// Config holds the validation and persistence policy of a file.
// Zero values disable the corresponding check.
type Config struct {
	// Validation
	MaxSize       int64    `env:"MAX_SIZE" envDefault:"0"`
	MaxLength     int      `env:"MAX_LENGTH" envDefault:"0"`
	ExtWhitelist  []string `env:"EXT_WHITELIST" envSeparator:","`
	ExtBlacklist  []string `env:"EXT_BLACKLIST" envSeparator:","`
	TypeWhitelist []string `env:"TYPE_WHITELIST" envSeparator:","`
	TypeBlacklist []string `env:"TYPE_BLACKLIST" envSeparator:","`
	MIMEWhitelist []string `env:"MIME_WHITELIST" envSeparator:","`
	MIMEBlacklist []string `env:"MIME_BLACKLIST" envSeparator:","`

	// Filename
	Prefix             string `env:"PREFIX"`
	Suffix             string `env:"SUFFIX"`
	Extension          string `env:"EXTENSION"`
	Randomize          bool   `env:"RANDOMIZE" envDefault:"false"`
	Normalize          bool   `env:"NORMALIZE" envDefault:"false"`
	NormalizeSeparator string `env:"NORMALIZE_SEPARATOR" envDefault:"_"`
	ChangeCase         Case   `env:"CHANGE_CASE"`

	// Destination
	Path       string `env:"PATH"`
	CreatePath bool   `env:"CREATE_PATH" envDefault:"true"`
	PathChmod  Mode   `env:"PATH_CHMOD" envDefault:"0777"`
	FileChmod  Mode   `env:"FILE_CHMOD" envDefault:"0666"`
	AutoRename bool   `env:"AUTO_RENAME" envDefault:"true"`
	NewName    string `env:"NEW_NAME"`
	Overwrite  bool   `env:"OVERWRITE" envDefault:"false"`

	// Extension points
	MessageResolver MessageResolver `env:"-"`
	Mover           Mover           `env:"-"`
}

// DefaultConfig returns the policy used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		NormalizeSeparator: "_",
		CreatePath:         true,
		PathChmod:          0o777,
		FileChmod:          0o666,
		AutoRename:         true,
	}
}

// Apply sets options by their snake_case names.
// Unknown names are ignored. A known name with a value of an unusable type
// returns ErrInvalidOption and leaves the remaining options unapplied.
//
// Example:
//
//	err := cfg.Apply(map[string]any{
//		"max_size":      5 << 20,
//		"ext_whitelist": []string{"jpg", "png"},
//		"path":          "/var/uploads",
//	})
func (c *Config) Apply(opts map[string]any) error {
	for name, value := range opts {
		if err := c.set(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) set(name string, value any) error {
	var err error
	switch name {
	case "max_size":
		c.MaxSize, err = toInt64(value)
	case "max_length":
		var n int64
		n, err = toInt64(value)
		c.MaxLength = int(n)
	case "ext_whitelist":
		c.ExtWhitelist, err = toStrings(value)
	case "ext_blacklist":
		c.ExtBlacklist, err = toStrings(value)
	case "type_whitelist":
		c.TypeWhitelist, err = toStrings(value)
	case "type_blacklist":
		c.TypeBlacklist, err = toStrings(value)
	case "mime_whitelist":
		c.MIMEWhitelist, err = toStrings(value)
	case "mime_blacklist":
		c.MIMEBlacklist, err = toStrings(value)
	case "prefix":
		c.Prefix, err = toString(value)
	case "suffix":
		c.Suffix, err = toString(value)
	case "extension":
		c.Extension, err = toString(value)
	case "randomize":
		c.Randomize, err = toBool(value)
	case "normalize":
		c.Normalize, err = toBool(value)
	case "normalize_separator":
		c.NormalizeSeparator, err = toString(value)
	case "change_case":
		var s string
		s, err = toString(value)
		c.ChangeCase = Case(strings.ToLower(s))
	case "path":
		c.Path, err = toString(value)
	case "create_path":
		c.CreatePath, err = toBool(value)
	case "path_chmod":
		c.PathChmod, err = toMode(value)
	case "file_chmod":
		c.FileChmod, err = toMode(value)
	case "auto_rename":
		c.AutoRename, err = toBool(value)
	case "new_name":
		c.NewName, err = toString(value)
	case "overwrite":
		c.Overwrite, err = toBool(value)
	case "lang_callback":
		switch v := value.(type) {
		case nil:
			c.MessageResolver = nil
		case MessageResolver:
			c.MessageResolver = v
		case func(int) string:
			c.MessageResolver = v
		default:
			err = errBadType(value)
		}
	case "move_callback":
		switch v := value.(type) {
		case nil:
			c.Mover = nil
		case Mover:
			c.Mover = v
		case func(string, string) bool:
			c.Mover = boolMover(v)
		default:
			err = errBadType(value)
		}
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidOption, name, err)
	}
	return nil
}

func errBadType(v any) error {
	return fmt.Errorf("unsupported value type %T", v)
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case bool:
		if n {
			return 0, errBadType(v)
		}
		return 0, nil
	case string:
		if n == "" {
			return 0, nil
		}
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, errBadType(v)
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int:
		return b != 0, nil
	case string:
		if b == "" {
			return false, nil
		}
		return strconv.ParseBool(b)
	}
	return false, errBadType(v)
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	case bool:
		if !s {
			return "", nil
		}
	case Case:
		return string(s), nil
	}
	return "", errBadType(v)
}

func toStrings(v any) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), s...), nil
	case string:
		if s == "" {
			return nil, nil
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, errBadType(item)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, errBadType(v)
}

func toMode(v any) (Mode, error) {
	switch m := v.(type) {
	case Mode:
		return m, nil
	case os.FileMode:
		return Mode(m), nil
	case int:
		return Mode(m), nil
	case uint32:
		return Mode(m), nil
	case string:
		var mode Mode
		err := mode.UnmarshalText([]byte(m))
		return mode, err
	}
	return 0, errBadType(v)
}
