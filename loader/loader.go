/*
Package loader turns a configured Source into an in-memory nuclide.Nuclide:
it resolves keywords, fetches paths/URLs (caching downloads on disk), and
decodes the result through io/nuclidejson. A second, in-memory cache keyed
by (id, source, temperature set) avoids redundant re-fetches across
overlapping requests, preferring the smallest already-resident superset of
the requested temperatures over a fresh fetch.

The HTTP-fetch-then-disk-cache shape follows the same http.Get, then
io.Copy into a created file sequence used elsewhere for fetching remote
bioinformatics records.
*/
package loader

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"lukechampine.com/blake3"

	"github.com/openneutronics/materials/config"
	"github.com/openneutronics/materials/io/nuclidejson"
	"github.com/openneutronics/materials/nuclide"
	"github.com/openneutronics/materials/reaction"
)

// ConfigError reports that no source is configured for a requested
// nuclide.
type ConfigError struct{ Msg string }

func (e *ConfigError) Error() string { return "config: " + e.Msg }

// SourceError reports a failure to reach a nuclide's data.
type SourceError struct {
	Msg      string
	InnerErr error
}

func (e *SourceError) Error() string {
	if e.InnerErr != nil {
		return fmt.Sprintf("source: %s: %v", e.Msg, e.InnerErr)
	}
	return "source: " + e.Msg
}
func (e *SourceError) Unwrap() error { return e.InnerErr }

// DecodeError reports malformed source data.
type DecodeError struct {
	Msg      string
	InnerErr error
}

func (e *DecodeError) Error() string {
	if e.InnerErr != nil {
		return fmt.Sprintf("decode: %s: %v", e.Msg, e.InnerErr)
	}
	return "decode: " + e.Msg
}
func (e *DecodeError) Unwrap() error { return e.InnerErr }

type cacheEntry struct {
	temperatures []nuclide.Temperature // sorted
	nuclide      *nuclide.Nuclide
}

// Loader fetches, decodes, and caches nuclides. The zero value is not
// usable; construct with New.
type Loader struct {
	registry  *config.Registry
	mu        sync.Mutex
	cache     map[string][]cacheEntry // key: id + "\x00" + source.Canonical()
	cacheDir  string
	httpGet   func(url string) (*http.Response, error)
	readFile  func(path string) ([]byte, error)
}

// New builds a Loader that resolves sources through registry and caches
// downloads under cacheDir (created lazily). Passing a nil registry uses
// config.Default.
func New(registry *config.Registry, cacheDir string) *Loader {
	if registry == nil {
		registry = config.Default
	}
	return &Loader{
		registry: registry,
		cache:    make(map[string][]cacheEntry),
		cacheDir: cacheDir,
		httpGet:  http.Get,
		readFile: os.ReadFile,
	}
}

// Default is the package-wide loader used by the root materials package
// when callers don't construct their own.
var Default = New(config.Default, defaultCacheDir())

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "openneutronics-materials", "downloads")
	}
	return filepath.Join(os.TempDir(), "openneutronics-materials-downloads")
}

// Load resolves source (or the configured source for id, if source is
// nil), fetches and decodes it if necessary, and returns a Nuclide
// carrying exactly the requested temperatures (or all available
// temperatures, if temperatures is empty).
func (l *Loader) Load(ctx context.Context, id string, source config.Source, temperatures []string) (*nuclide.Nuclide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if source == nil {
		resolved, ok := l.registry.GetCrossSection(id)
		if !ok {
			return nil, &ConfigError{Msg: fmt.Sprintf("no source configured for nuclide %s", id)}
		}
		source = resolved
	}

	requested := canonicalTemps(temperatures)
	key := id + "\x00" + source.Canonical()

	if n := l.lookupCache(key, requested); n != nil {
		return n, nil
	}

	doc, err := l.fetch(ctx, id, source)
	if err != nil {
		return nil, err
	}

	full, err := FromDocument(id, doc, nil)
	if err != nil {
		return nil, err
	}
	full.Source = source
	l.installAutoLoader(full, id, source)
	l.store(key, full.AvailableTemperatures, full)

	if len(requested) == 0 {
		return full, nil
	}
	return subsetFor(full, requested)
}

// ClearNuclideCache flushes the in-memory cache. The on-disk download
// cache is untouched.
func (l *Loader) ClearNuclideCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string][]cacheEntry)
}

func canonicalTemps(temps []string) []nuclide.Temperature {
	if len(temps) == 0 {
		return nil
	}
	out := make([]nuclide.Temperature, len(temps))
	for i, t := range temps {
		out[i] = nuclide.Temperature(t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func supersetOf(have, want []nuclide.Temperature) bool {
	haveSet := make(map[nuclide.Temperature]bool, len(have))
	for _, t := range have {
		haveSet[t] = true
	}
	for _, t := range want {
		if !haveSet[t] {
			return false
		}
	}
	return true
}

// lookupCache returns a Nuclide satisfying requested if any cached entry
// for key is a superset, preferring the smallest qualifying superset to
// minimise the in-memory footprint handed back to the caller.
func (l *Loader) lookupCache(key string, requested []nuclide.Temperature) *nuclide.Nuclide {
	l.mu.Lock()
	entries := append([]cacheEntry(nil), l.cache[key]...)
	l.mu.Unlock()

	var best *cacheEntry
	for i := range entries {
		entry := &entries[i]
		if len(requested) > 0 && !supersetOf(entry.temperatures, requested) {
			continue
		}
		if len(requested) == 0 && len(entry.temperatures) != len(entry.nuclide.AvailableTemperatures) {
			continue
		}
		if best == nil || len(entry.temperatures) < len(best.temperatures) {
			best = entry
		}
	}
	if best == nil {
		return nil
	}
	if len(requested) == 0 {
		return best.nuclide
	}
	subset, err := subsetFor(best.nuclide, requested)
	if err != nil {
		return nil
	}
	return subset
}

func (l *Loader) store(key string, temps []nuclide.Temperature, n *nuclide.Nuclide) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sorted := append([]nuclide.Temperature(nil), temps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	l.cache[key] = append(l.cache[key], cacheEntry{temperatures: sorted, nuclide: n})
}

// subsetFor builds a Nuclide view over full restricted to the requested,
// already-resident temperatures.
func subsetFor(full *nuclide.Nuclide, requested []nuclide.Temperature) (*nuclide.Nuclide, error) {
	reactions := make(map[nuclide.Temperature]map[reaction.MT]nuclide.Reaction, len(requested))
	for _, t := range requested {
		table, ok := full.Reactions[t]
		if !ok {
			return nil, &nuclide.NotFoundError{
				Msg:       fmt.Sprintf("temperature %s not present for nuclide %s", t, full.ID),
				Available: temperatureStrings(full.AvailableTemperatures),
			}
		}
		reactions[t] = table
	}
	sub := *full
	sub.LoadedTemperatures = append([]nuclide.Temperature(nil), requested...)
	sub.Reactions = reactions
	return &sub, nil
}

func temperatureStrings(temps []nuclide.Temperature) []string {
	out := make([]string, len(temps))
	for i, t := range temps {
		out[i] = string(t)
	}
	return out
}

// installAutoLoader wires a freshly built Nuclide so that requesting an
// available-but-not-yet-loaded temperature later triggers a Load call
// back into this Loader.
func (l *Loader) installAutoLoader(n *nuclide.Nuclide, id string, source config.Source) {
	n.SetAutoLoader(func(temperatures []nuclide.Temperature) (*nuclide.Nuclide, error) {
		temps := make([]string, len(temperatures))
		for i, t := range temperatures {
			temps[i] = string(t)
		}
		return l.Load(context.Background(), id, source, temps)
	})
}

// fetch resolves source to bytes (via path read, or HTTP GET with a
// disk cache) and decodes them into a Document.
func (l *Loader) fetch(ctx context.Context, id string, source config.Source) (nuclidejson.Document, error) {
	switch src := source.(type) {
	case config.PathSource:
		data, err := l.readFile(src.Path)
		if err != nil {
			return nuclidejson.Document{}, &SourceError{Msg: fmt.Sprintf("reading %s", src.Path), InnerErr: err}
		}
		return decode(data)
	case config.URLSource:
		data, err := l.fetchURL(ctx, src.URL)
		if err != nil {
			return nuclidejson.Document{}, err
		}
		return decode(data)
	case config.KeywordSource:
		url, err := config.ResolveKeyword(src.Keyword, id)
		if err != nil {
			return nuclidejson.Document{}, &ConfigError{Msg: err.Error()}
		}
		data, err := l.fetchURL(ctx, url)
		if err != nil {
			return nuclidejson.Document{}, err
		}
		return decode(data)
	default:
		return nuclidejson.Document{}, &ConfigError{Msg: fmt.Sprintf("unsupported source type %T", source)}
	}
}

func decode(data []byte) (nuclidejson.Document, error) {
	doc, err := nuclidejson.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nuclidejson.Document{}, &DecodeError{Msg: "parsing nuclide JSON", InnerErr: err}
	}
	return doc, nil
}

func (l *Loader) fetchURL(ctx context.Context, url string) ([]byte, error) {
	cachePath := l.downloadCachePath(url)
	if data, err := l.readFile(cachePath); err == nil {
		return data, nil
	}

	resp, err := l.httpGet(url)
	if err != nil {
		return nil, &SourceError{Msg: fmt.Sprintf("fetching %s", url), InnerErr: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, &SourceError{Msg: fmt.Sprintf("fetching %s: status %s", url, resp.Status)}
	}

	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		return nil, &SourceError{Msg: "creating download cache directory", InnerErr: err}
	}
	out, err := os.Create(cachePath)
	if err != nil {
		return nil, &SourceError{Msg: "creating download cache file", InnerErr: err}
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return nil, &SourceError{Msg: fmt.Sprintf("downloading %s", url), InnerErr: err}
	}
	return l.readFile(cachePath)
}

// downloadCachePath keys the on-disk download cache by a blake3 digest of
// the URL string, so repeated fetches of the same URL share one cached
// file. URLs that differ only in formatting hash to different files.
func (l *Loader) downloadCachePath(url string) string {
	sum := blake3.Sum256([]byte(url))
	return filepath.Join(l.cacheDir, hex.EncodeToString(sum[:])+".json")
}

// FromDocument converts a decoded Document into a Nuclide, validating the
// id match and the requested temperature subset (nil means "all
// available"). Every reaction's energy grid must be strictly increasing.
func FromDocument(id string, doc nuclidejson.Document, temperatures []string) (*nuclide.Nuclide, error) {
	if err := checkIDMatch(id, doc); err != nil {
		return nil, err
	}

	available := make([]nuclide.Temperature, 0)
	for _, label := range doc.SortedTemperatures() {
		available = append(available, nuclide.Temperature(label))
	}

	var selected []nuclide.Temperature
	if len(temperatures) == 0 {
		selected = available
	} else {
		availableSet := map[nuclide.Temperature]bool{}
		for _, t := range available {
			availableSet[t] = true
		}
		for _, raw := range temperatures {
			t := nuclide.Temperature(raw)
			if !availableSet[t] {
				return nil, &nuclide.NotFoundError{
					Msg:       fmt.Sprintf("temperature %s not present in source for nuclide %s", raw, id),
					Available: temperatureStrings(available),
				}
			}
			selected = append(selected, t)
		}
	}

	reactions := make(map[nuclide.Temperature]map[reaction.MT]nuclide.Reaction, len(selected))
	for _, t := range selected {
		table, err := buildTable(id, string(t), doc.Temperatures[string(t)])
		if err != nil {
			return nil, err
		}
		reactions[t] = table
	}

	n := &nuclide.Nuclide{
		ID:                    id,
		ElementSymbol:         doc.AtomicSymbol,
		ElementName:           doc.Element,
		AtomicNumber:          doc.AtomicNumber,
		MassNumber:            doc.MassNumber,
		NeutronNumber:         doc.NeutronNumber,
		AtomicMass:            doc.AtomicMass,
		AvailableTemperatures: available,
		LoadedTemperatures:    selected,
		Reactions:             reactions,
	}
	return n, nil
}

func buildTable(id, temperature string, table nuclidejson.TemperatureTable) (map[reaction.MT]nuclide.Reaction, error) {
	out := make(map[reaction.MT]nuclide.Reaction, len(table))
	for mtKey, entry := range table {
		mtInt, err := strconv.Atoi(mtKey)
		if err != nil {
			return nil, &DecodeError{Msg: fmt.Sprintf("nuclide %s: MT key %q is not numeric", id, mtKey), InnerErr: err}
		}
		if len(entry.Energy) != len(entry.CrossSection) {
			return nil, &DecodeError{Msg: fmt.Sprintf("nuclide %s MT %d at %s: energy/cross_section length mismatch", id, mtInt, temperature)}
		}
		for i := 1; i < len(entry.Energy); i++ {
			if entry.Energy[i] <= entry.Energy[i-1] {
				return nil, &DecodeError{Msg: fmt.Sprintf("nuclide %s MT %d at %s: energy grid not strictly increasing", id, mtInt, temperature)}
			}
		}
		for _, xs := range entry.CrossSection {
			if xs < 0 {
				return nil, &DecodeError{Msg: fmt.Sprintf("nuclide %s MT %d at %s: negative cross section", id, mtInt, temperature)}
			}
		}
		out[reaction.MT(mtInt)] = nuclide.Reaction{
			MT:     reaction.MT(mtInt),
			Energy: entry.Energy,
			XS:     entry.CrossSection,
		}
	}
	return out, nil
}

// idPattern splits a nuclide id like "Li6" or "U235" into its element
// symbol and mass number.
var idPattern = regexp.MustCompile(`^([A-Za-z]+)(\d+)$`)

func checkIDMatch(id string, doc nuclidejson.Document) error {
	matches := idPattern.FindStringSubmatch(id)
	if matches == nil {
		return nil // non-standard id, nothing to cross-check
	}
	symbol := matches[1]
	mass, _ := strconv.Atoi(matches[2])
	if doc.AtomicSymbol != "" && !strings.EqualFold(doc.AtomicSymbol, symbol) {
		return &SourceError{Msg: fmt.Sprintf("source describes element %s but id %s requests %s", doc.AtomicSymbol, id, symbol)}
	}
	if doc.MassNumber != 0 && doc.MassNumber != mass {
		return &SourceError{Msg: fmt.Sprintf("source describes mass number %d but id %s requests %d", doc.MassNumber, id, mass)}
	}
	return nil
}
