package typegen

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/goccy/go-yaml"
)

// Loader fetches the raw bytes of a schema document given a URI, per SPEC_FULL.md §4.1.
// Grounded on the teacher's Compiler.Loaders registry (compiler.go): a map of URI scheme to
// fetch function, generalized here into an interface so the Bundler can be handed a composite
// of loaders without owning the registry itself.
type Loader interface {
	// Load fetches the document at uri, returning ErrNoLoaderRegistered if this Loader does not
	// recognize the scheme.
	Load(ctx context.Context, uri string) ([]byte, error)
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc func(ctx context.Context, uri string) ([]byte, error)

func (f LoaderFunc) Load(ctx context.Context, uri string) ([]byte, error) { return f(ctx, uri) }

// MapLoader serves documents from an in-memory map, keyed by the same URI/symbolic name a
// schema's $id or AddDefinitions key would use. (AddDefinitions itself registers its document
// with the Bundler directly and does not use a MapLoader.) Schema documents
// embedded via go:embed or synthesized in tests never need network access.
//
// A document whose key ends in .yaml/.yml, or whose bytes don't start with '{' once leading
// whitespace is trimmed, is treated as YAML and decoded with goccy/go-yaml before being handed
// on as JSON — grounded on the teacher's own application/yaml media type handler
// (compiler.go's setupMediaTypes), which uses the same yaml.Unmarshal-into-any-then-remarshal
// approach, just at the loader boundary instead of the media-type boundary since this package
// has no $schema-driven media type dispatch of its own.
type MapLoader map[string][]byte

func (m MapLoader) Load(_ context.Context, uri string) ([]byte, error) {
	data, ok := m[uri]
	if !ok {
		return nil, &LoadError{URL: uri, Detail: ErrNoLoaderRegistered}
	}
	if looksLikeYAML(uri, data) {
		var temp any
		if err := yaml.Unmarshal(data, &temp); err != nil {
			return nil, &ParseError{URL: uri, Detail: err}
		}
		converted, err := json.Marshal(temp, json.Deterministic(true))
		if err != nil {
			return nil, &ParseError{URL: uri, Detail: err}
		}
		return converted, nil
	}
	return data, nil
}

func looksLikeYAML(uri string, data []byte) bool {
	if strings.HasSuffix(uri, ".yaml") || strings.HasSuffix(uri, ".yml") {
		return true
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] != '{'
}

// NullLoader rejects every fetch. It is the default when a TypeSpace is constructed without an
// explicit Loader, so that a dangling $ref fails fast with ErrNoLoaderRegistered instead of
// silently reaching out to the network.
type NullLoader struct{}

func (NullLoader) Load(_ context.Context, uri string) ([]byte, error) {
	return nil, &LoadError{URL: uri, Detail: ErrNoLoaderRegistered}
}

// ChainLoader tries each Loader in order, returning the first successful result. Grounded on the
// teacher's per-scheme Loaders map (compiler.go setupLoaders): here every candidate is tried
// regardless of scheme, since SchemeLoader (below) already gates on scheme explicitly.
type ChainLoader []Loader

func (c ChainLoader) Load(ctx context.Context, uri string) ([]byte, error) {
	var lastErr error
	for _, l := range c {
		data, err := l.Load(ctx, uri)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrNoLoaderRegistered
	}
	return nil, lastErr
}

// SchemeLoader dispatches to a per-scheme Loader, mirroring the teacher's
// Compiler.Loaders map(scheme -> fetch function) exactly, generalized to the Loader interface.
type SchemeLoader map[string]Loader

func (s SchemeLoader) Load(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, &LoadError{URL: uri, Detail: err}
	}
	loader, ok := s[u.Scheme]
	if !ok {
		return nil, &LoadError{URL: uri, Detail: ErrNoLoaderRegistered}
	}
	return loader.Load(ctx, uri)
}

// NewHTTPLoader returns the default http/https Loader, grounded on the teacher's
// setupLoaders defaultHTTPLoader: a 10 second timeout, GET only, non-200 treated as failure.
func NewHTTPLoader() Loader {
	client := &http.Client{Timeout: 10 * time.Second}
	return LoaderFunc(func(ctx context.Context, uri string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, &LoadError{URL: uri, Detail: err}
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, &LoadError{URL: uri, Detail: ErrNetworkFetch}
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			return nil, &LoadError{URL: uri, Detail: ErrInvalidStatusCode}
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &LoadError{URL: uri, Detail: ErrDataRead}
		}
		return data, nil
	})
}

// DefaultLoaders returns the http/https scheme registry (both via NewHTTPLoader) that cmd/typegen
// passes as Settings.Loader; a TypeSpace whose Settings.Loader is nil uses NullLoader instead. Grounded on Compiler.initDefaults/setupLoaders.
func DefaultLoaders() Loader {
	http := NewHTTPLoader()
	return SchemeLoader{"http": http, "https": http}
}
