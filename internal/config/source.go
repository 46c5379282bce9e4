package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nao1215/listat/internal/fetch"
)

// DefaultSourcePaths are the LiveInternet counters reported when no sources
// file is given.
var DefaultSourcePaths = []string{
	"dontr.ru/index.html",
	"hsdigital/rn/smi/61/index.html",
	"bloknot-rostov.ru/index.html",
	"donday.ru/index.html",
	"donnews.ru/index.html",
	"panram.ru/index.html",
	"privet-rostov.ru/index.html",
	"rostovgazeta.ru/index.html",
	"big-rostov.ru/index.html",
	"don24.ru/index.html",
}

// SourceConfig describes one LiveInternet counter.
type SourceConfig struct {
	// ID overrides the identifier derived from Path.
	ID string `yaml:"id,omitempty"`

	// Path is the counter path below the base URL, e.g. "dontr.ru/index.html".
	Path string `yaml:"path" validate:"required"`

	// Cookie is sent with requests for this source. Private counters need a
	// session cookie.
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are sent with requests for this source.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// SourceID returns ID, or the identifier derived from Path.
func (s SourceConfig) SourceID() string {
	if s.ID != "" {
		return s.ID
	}
	return fetch.SourceID(s.Path)
}

// File is the structure of the .listat sources file.
type File struct {
	// BaseURL is the statistics root. Empty means DefaultBaseURL.
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`

	// Defaults are sent by the HTTP client with every request. A cookie or
	// header set on a source wins.
	Defaults SourceConfig `yaml:"defaults,omitempty" validate:"-"`

	// Sources are reported in this order.
	Sources []SourceConfig `yaml:"sources" validate:"required,min=1,dive"`
}

// DefaultFile returns the built-in sources.
func DefaultFile() *File {
	f := &File{BaseURL: DefaultBaseURL}
	for _, p := range DefaultSourcePaths {
		f.Sources = append(f.Sources, SourceConfig{Path: p})
	}
	return f
}

// SourceIDs returns the identifiers of all sources in order.
func (f *File) SourceIDs() []string {
	ids := make([]string, len(f.Sources))
	for i, s := range f.Sources {
		ids[i] = s.SourceID()
	}
	return ids
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field rules and identifier uniqueness.
func (f *File) Validate() error {
	if len(f.Sources) == 0 {
		return ErrNoSources
	}
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidSources, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidSources, err)
	}

	seen := make(map[string]struct{}, len(f.Sources))
	for _, id := range f.SourceIDs() {
		if id == "" {
			return fmt.Errorf("%w: empty source id", ErrInvalidSources)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateSource, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
