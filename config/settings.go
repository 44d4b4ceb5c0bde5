// Package config persists user settings in a single YAML file.
// The file supplies defaults; explicit command-line flags win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/postpipe/core/render"
	yaml "gopkg.in/yaml.v3"
)

var (
	// ErrUnknownKey is returned by Set for a key that is not a setting.
	ErrUnknownKey = errors.New("unknown setting")
	// ErrInvalidValue is returned by Set when a value does not parse for its key.
	ErrInvalidValue = errors.New("invalid value")
)

// Settings are the recognized options.
type Settings struct {
	FilenameFormat      string  `yaml:"filenameFormat"`
	UseFrontmatter      bool    `yaml:"useFrontmatter"`
	FrontmatterTemplate string  `yaml:"frontmatterTemplate"`
	PDFShowCover        bool    `yaml:"pdfShowCover"`
	PDFShowFootnotes    bool    `yaml:"pdfShowFootnotes"`
	PDFFontSize         float64 `yaml:"pdfFontSize"`
	PDFFontPath         string  `yaml:"pdfFontPath"`
	OutputDir           string  `yaml:"outputDir"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{
		FilenameFormat:   string(render.FormatTitleDate),
		UseFrontmatter:   false,
		PDFShowCover:     true,
		PDFShowFootnotes: true,
		PDFFontSize:      11,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/postpipe/config.yaml or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "postpipe", "config.yaml"), nil
}

// Load reads settings from path on top of Defaults. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Defaults()
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Defaults(), fmt.Errorf("parse yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Defaults(), fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path, creating its directory.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks values that have a restricted domain.
func (s Settings) Validate() error {
	if _, err := render.ParseFilenameFormat(s.FilenameFormat); err != nil {
		return fmt.Errorf("%w: filenameFormat: %v", ErrInvalidValue, err)
	}
	if s.PDFFontSize <= 0 || s.PDFFontSize > 72 {
		return fmt.Errorf("%w: pdfFontSize %v out of range (0, 72]", ErrInvalidValue, s.PDFFontSize)
	}
	return nil
}

type field struct {
	get func(*Settings) string
	set func(*Settings, string) error
}

var fields = map[string]field{
	"filenameFormat": {
		get: func(s *Settings) string { return s.FilenameFormat },
		set: func(s *Settings, v string) error {
			f, err := render.ParseFilenameFormat(v)
			if err != nil {
				return err
			}
			s.FilenameFormat = string(f)
			return nil
		},
	},
	"useFrontmatter":      boolField(func(s *Settings) *bool { return &s.UseFrontmatter }),
	"frontmatterTemplate": stringField(func(s *Settings) *string { return &s.FrontmatterTemplate }),
	"pdfShowCover":        boolField(func(s *Settings) *bool { return &s.PDFShowCover }),
	"pdfShowFootnotes":    boolField(func(s *Settings) *bool { return &s.PDFShowFootnotes }),
	"pdfFontSize": {
		get: func(s *Settings) string { return strconv.FormatFloat(s.PDFFontSize, 'g', -1, 64) },
		set: func(s *Settings, v string) error {
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return err
			}
			if n <= 0 || n > 72 {
				return fmt.Errorf("%v out of range (0, 72]", n)
			}
			s.PDFFontSize = n
			return nil
		},
	},
	"pdfFontPath": stringField(func(s *Settings) *string { return &s.PDFFontPath }),
	"outputDir":   stringField(func(s *Settings) *string { return &s.OutputDir }),
}

func boolField(ptr func(*Settings) *bool) field {
	return field{
		get: func(s *Settings) string { return strconv.FormatBool(*ptr(s)) },
		set: func(s *Settings, v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*ptr(s) = b
			return nil
		},
	}
}

func stringField(ptr func(*Settings) *string) field {
	return field{
		get: func(s *Settings) string { return *ptr(s) },
		set: func(s *Settings, v string) error {
			*ptr(s) = v
			return nil
		},
	}
}

// Keys lists the setting names in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of a setting.
func (s *Settings) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return f.get(s), nil
}

// Set parses value and assigns it to key.
func (s *Settings) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err := f.set(s, value); err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidValue, key, err)
	}
	return nil
}

// MarkdownOptions maps the settings onto the Markdown renderer.
func (s Settings) MarkdownOptions() render.MarkdownOptions {
	opts := render.DefaultMarkdownOptions()
	opts.IncludeFrontMatter = s.UseFrontmatter
	opts.FrontMatterTemplate = s.FrontmatterTemplate
	return opts
}

// PDFOptions maps the settings onto the PDF renderer.
func (s Settings) PDFOptions() render.PDFOptions {
	opts := render.DefaultPDFOptions()
	opts.ShowCover = s.PDFShowCover
	opts.ShowFootnotes = s.PDFShowFootnotes
	if s.PDFFontSize > 0 {
		opts.FontSize = s.PDFFontSize
	}
	opts.FontPath = s.PDFFontPath
	return opts
}

// FilenameOptions maps the settings onto output naming. An invalid format
// falls back to title-date.
func (s Settings) FilenameOptions() render.FilenameOptions {
	f, err := render.ParseFilenameFormat(s.FilenameFormat)
	if err != nil {
		f = render.FormatTitleDate
	}
	return render.FilenameOptions{Format: f}
}
