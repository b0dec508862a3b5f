// Package annotator extracts declared type and method names from source files.
package annotator

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tjgokken/solmap/internal/types"
)

// ErrMalformedSource marks source text the parser could not understand.
var ErrMalformedSource = errors.New("malformed source")

// ParseError reports why a file could not be annotated.
type ParseError struct {
	Language string
	Err      error
}

func (parseError *ParseError) Error() string {
	return fmt.Sprintf("parse %s source: %v", parseError.Language, parseError.Err)
}

func (parseError *ParseError) Unwrap() error {
	return parseError.Err
}

// Annotator returns the declared types of one file in declaration order, each with
// its methods in declaration order. Failures are reported as *ParseError.
type Annotator interface {
	Parse(text []byte) ([]types.CodeUnit, error)
}

// Lookup resolves the annotator responsible for a file extension.
type Lookup interface {
	ForExtension(extension string) (Annotator, bool)
}

// Registry maps lower-case file extensions to annotators.
type Registry struct {
	annotators map[string]Annotator
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{annotators: map[string]Annotator{}}
}

// Register associates the annotator with each extension. Nil annotators are ignored
// so platforms without tree-sitter simply register nothing.
func (registry *Registry) Register(annotator Annotator, extensions ...string) {
	if annotator == nil {
		return
	}
	for _, extension := range extensions {
		registry.annotators[strings.ToLower(extension)] = annotator
	}
}

// ForExtension implements Lookup.
func (registry *Registry) ForExtension(extension string) (Annotator, bool) {
	if registry == nil {
		return nil, false
	}
	annotator, found := registry.annotators[strings.ToLower(extension)]
	return annotator, found
}

// Len returns the number of registered extensions.
func (registry *Registry) Len() int {
	if registry == nil {
		return 0
	}
	return len(registry.annotators)
}

// CachingAnnotator memoizes results by content hash. It is safe for concurrent use.
type CachingAnnotator struct {
	delegate Annotator
	cache    *lru.Cache[[sha256.Size]byte, cachedResult]
}

type cachedResult struct {
	units []types.CodeUnit
	err   error
}

// NewCachingAnnotator wraps delegate with an LRU cache holding up to size results.
func NewCachingAnnotator(delegate Annotator, size int) (*CachingAnnotator, error) {
	cache, cacheError := lru.New[[sha256.Size]byte, cachedResult](size)
	if cacheError != nil {
		return nil, fmt.Errorf("create annotation cache: %w", cacheError)
	}
	return &CachingAnnotator{delegate: delegate, cache: cache}, nil
}

// Parse implements Annotator.
func (annotator *CachingAnnotator) Parse(text []byte) ([]types.CodeUnit, error) {
	key := sha256.Sum256(text)
	if cached, found := annotator.cache.Get(key); found {
		return cached.units, cached.err
	}
	units, parseError := annotator.delegate.Parse(text)
	annotator.cache.Add(key, cachedResult{units: units, err: parseError})
	return units, parseError
}

// Cached returns a registry whose annotators are wrapped with a CachingAnnotator per extension.
func (registry *Registry) Cached(size int) (*Registry, error) {
	cachedRegistry := NewRegistry()
	for extension, annotator := range registry.annotators {
		cachingAnnotator, cacheError := NewCachingAnnotator(annotator, size)
		if cacheError != nil {
			return nil, cacheError
		}
		cachedRegistry.annotators[extension] = cachingAnnotator
	}
	return cachedRegistry, nil
}

// AnnotatorFunc adapts a function to the Annotator interface.
type AnnotatorFunc func(text []byte) ([]types.CodeUnit, error)

// Parse implements Annotator.
func (function AnnotatorFunc) Parse(text []byte) ([]types.CodeUnit, error) {
	return function(text)
}
