/*
Package config holds the process-wide mapping from nuclide id to the data
source the loader should fetch it from: a local path, an absolute URL, or
a keyword that expands to a URL template at lookup time.

A typed Source variant plus a mutex-guarded Registry represents this as
a closed tagged union rather than an any-typed field threaded through
the rest of the library.
*/
package config

import (
	"fmt"
	"strings"
	"sync"
)

// Source is a resolved descriptor for where a nuclide's evaluated data
// lives. The three concrete implementations are PathSource, URLSource,
// and KeywordSource.
type Source interface {
	// Canonical returns the string used as part of the in-memory nuclide
	// cache key. The on-disk download cache is keyed by the fetched URL
	// itself, not by this string.
	Canonical() string
	isSource()
}

// PathSource is a local filesystem path.
type PathSource struct{ Path string }

func (p PathSource) Canonical() string { return "path:" + p.Path }
func (PathSource) isSource()           {}

// URLSource is an absolute URL.
type URLSource struct{ URL string }

func (u URLSource) Canonical() string { return "url:" + u.URL }
func (URLSource) isSource()           {}

// KeywordSource is a bundled keyword (e.g. "tendl-21") that expands to a
// URL template at lookup time by substituting the nuclide id.
type KeywordSource struct{ Keyword string }

func (k KeywordSource) Canonical() string { return "keyword:" + k.Keyword }
func (KeywordSource) isSource()           {}

// keywordTemplates is the closed, bundled keyword -> URL template map.
// {nuclide} is substituted with the nuclide id (e.g. "Li6") at resolve
// time.
var keywordTemplates = map[string]string{
	"tendl-21":   "https://tendl.web.psi.ch/tendl_2021/neutron_file/{nuclide}/{nuclide}.json",
	"fendl-3.2c": "https://www-nds.iaea.org/fendl/data/neutron/{nuclide}.json",
	"endfb-8.0":  "https://www.nndc.bnl.gov/endf-b8.0/json/{nuclide}.json",
	"jeff-3.3":   "https://www.oecd-nea.org/dbdata/jeff/jeff33/json/{nuclide}.json",
}

// ResolveKeyword expands a keyword source into the URL for a specific
// nuclide. Unknown keywords fail at lookup time, not at Set time: a typo
// in set_cross_sections should not surface until something actually
// tries to load.
func ResolveKeyword(keyword, nuclideID string) (string, error) {
	template, ok := keywordTemplates[keyword]
	if !ok {
		return "", &UnknownKeywordError{Keyword: keyword}
	}
	return strings.ReplaceAll(template, "{nuclide}", nuclideID), nil
}

// UnknownKeywordError reports a keyword not present in the bundled
// template table.
type UnknownKeywordError struct{ Keyword string }

func (e *UnknownKeywordError) Error() string {
	return fmt.Sprintf("config: %q is not a recognised source keyword", e.Keyword)
}

// NewSource classifies a raw value into a Source. A string is inspected
// for a path separator or known file suffix (path), an "://" scheme
// (URL), or else treated as a keyword. A Source value is passed through
// unchanged.
func NewSource(value any) (Source, error) {
	switch v := value.(type) {
	case Source:
		return v, nil
	case string:
		return classifyString(v), nil
	default:
		return nil, fmt.Errorf("config: unsupported source value of type %T", value)
	}
}

func classifyString(s string) Source {
	if strings.Contains(s, "://") {
		return URLSource{URL: s}
	}
	if strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".json") {
		return PathSource{Path: s}
	}
	return KeywordSource{Keyword: s}
}

// Registry is a mutex-guarded, process-wide store mapping nuclide id to
// Source, with an optional global default used for any id without a
// specific entry.
type Registry struct {
	mu         sync.RWMutex
	perNuclide map[string]Source
	global     Source
}

// New returns an empty, independent Registry. Most callers should use the
// package-level default registry via the package functions below;
// New exists for tests that want isolation from global state.
func New() *Registry {
	return &Registry{perNuclide: make(map[string]Source)}
}

// SetCrossSections sets either a per-nuclide mapping (map[string]string
// or map[string]Source, keyed by nuclide id) or a single keyword/path/URL
// string (or Source) used as the global default for any nuclide lookup.
// Any other Go type is rejected with a plain error value; this package
// has no typed error for a wrong argument kind.
func (r *Registry) SetCrossSections(value any) error {
	switch v := value.(type) {
	case string:
		src, err := NewSource(v)
		if err != nil {
			return err
		}
		r.mu.Lock()
		r.global = src
		r.mu.Unlock()
		return nil
	case Source:
		r.mu.Lock()
		r.global = v
		r.mu.Unlock()
		return nil
	case map[string]string:
		parsed := make(map[string]Source, len(v))
		for id, raw := range v {
			src, err := NewSource(raw)
			if err != nil {
				return err
			}
			parsed[id] = src
		}
		r.mu.Lock()
		for id, src := range parsed {
			r.perNuclide[id] = src
		}
		r.mu.Unlock()
		return nil
	case map[string]Source:
		r.mu.Lock()
		for id, src := range v {
			r.perNuclide[id] = src
		}
		r.mu.Unlock()
		return nil
	default:
		return fmt.Errorf("config: set_cross_sections requires a mapping or keyword string, got %T", value)
	}
}

// SetCrossSection sets the source for a single nuclide id.
func (r *Registry) SetCrossSection(id string, value any) error {
	src, err := NewSource(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.perNuclide[id] = src
	r.mu.Unlock()
	return nil
}

// GetCrossSection returns the source configured for id, falling back to
// the global default. The bool result is false when neither is set.
func (r *Registry) GetCrossSection(id string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if src, ok := r.perNuclide[id]; ok {
		return src, true
	}
	if r.global != nil {
		return r.global, true
	}
	return nil, false
}

// GetCrossSections returns a snapshot of the per-nuclide registry (not
// including the global default).
func (r *Registry) GetCrossSections() map[string]Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Source, len(r.perNuclide))
	for id, src := range r.perNuclide {
		out[id] = src
	}
	return out
}

// Default is the package-wide registry used by the top-level
// SetCrossSections/SetCrossSection/GetCrossSection functions.
var Default = New()

// SetCrossSections delegates to the Default registry.
func SetCrossSections(value any) error { return Default.SetCrossSections(value) }

// SetCrossSection delegates to the Default registry.
func SetCrossSection(id string, value any) error { return Default.SetCrossSection(id, value) }

// GetCrossSection delegates to the Default registry.
func GetCrossSection(id string) (Source, bool) { return Default.GetCrossSection(id) }

// GetCrossSections delegates to the Default registry.
func GetCrossSections() map[string]Source { return Default.GetCrossSections() }
