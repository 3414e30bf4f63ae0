// Package classify maps incoming requests to a resource class. The class
// decides which cache generation and which caching policy apply. It must
// be total: every request gets a class, malformed input included.
package classify

import (
	"net/url"
	"path"
	"strings"
)

// Class is the closed set of resource classes.
type Class int

const (
	ClassOther Class = iota
	ClassStaticAsset
	ClassMediaAsset
	ClassAPICall
)

// String names the class for logs and metrics.
func (c Class) String() string {
	switch c {
	case ClassStaticAsset:
		return "static-asset"
	case ClassMediaAsset:
		return "media-asset"
	case ClassAPICall:
		return "api-call"
	default:
		return "other"
	}
}

// Classifier is a pure path-based classifier.
type Classifier struct {
	staticPrefixes []string
	staticFiles    []string
	audioPrefixes  []string
	audioExts      map[string]struct{}
	apiPrefixes    []string
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithStaticPrefixes replaces the static-asset path prefixes.
func WithStaticPrefixes(prefixes ...string) Option {
	return func(c *Classifier) { c.staticPrefixes = prefixes }
}

// WithAudioPrefixes replaces the audio-serving path prefixes.
func WithAudioPrefixes(prefixes ...string) Option {
	return func(c *Classifier) { c.audioPrefixes = prefixes }
}

// WithAPIPrefixes replaces the API path prefixes.
func WithAPIPrefixes(prefixes ...string) Option {
	return func(c *Classifier) { c.apiPrefixes = prefixes }
}

// New creates a classifier with the agent's defaults.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		staticPrefixes: []string{"/static/"},
		staticFiles:    []string{"/manifest.json", "/favicon.ico"},
		audioPrefixes:  []string{"/audio/"},
		audioExts: map[string]struct{}{
			".mp3":  {},
			".wav":  {},
			".ogg":  {},
			".m4a":  {},
			".flac": {},
		},
		apiPrefixes: []string{"/api/"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the resource class for a request URL. Never fails: an
// unparseable URL is ClassOther.
func (c *Classifier) Classify(rawURL string) Class {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ClassOther
	}
	p := u.Path
	if p == "" {
		return ClassOther
	}

	for _, prefix := range c.staticPrefixes {
		if strings.HasPrefix(p, prefix) {
			return ClassStaticAsset
		}
	}
	for _, file := range c.staticFiles {
		if p == file {
			return ClassStaticAsset
		}
	}
	for _, prefix := range c.audioPrefixes {
		if strings.HasPrefix(p, prefix) {
			return ClassMediaAsset
		}
	}
	if _, ok := c.audioExts[strings.ToLower(path.Ext(p))]; ok {
		return ClassMediaAsset
	}
	for _, prefix := range c.apiPrefixes {
		if strings.HasPrefix(p, prefix) {
			return ClassAPICall
		}
	}
	return ClassOther
}

// Role maps a class to the logical store role its entries live in.
// API calls and navigations share the dynamic store.
func (c Class) Role() string {
	switch c {
	case ClassStaticAsset:
		return "static"
	case ClassMediaAsset:
		return "media"
	default:
		return "dynamic"
	}
}
