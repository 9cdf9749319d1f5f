package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey is the key for a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// PayloadKey is the key for a decoded payload fetched from source.
	PayloadKey(source string) string

	// ArtifactKey is the key for a rendered artifact of a payload.
	ArtifactKey(payloadHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render settings that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format   string     `json:"format"`
	Collapse []int      `json:"collapse,omitempty"`
	Depth    int        `json:"depth,omitempty"`
	Layout   [2]float64 `json:"layout"` // level and sibling spacing
	Canvas   [2]float64 `json:"canvas"` // width and height
	Detailed bool       `json:"detailed,omitempty"`
	Tags     string     `json:"tags,omitempty"` // hash of extra tags
}

// Hash returns the hex SHA-256 of data. Payload hashes identify a tree's
// content independently of where it was loaded from.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digest is "<kind>:" followed by the hash of the JSON encoding of parts.
// Struct fields encode in declaration order, so equal settings give equal keys.
func digest(kind string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		panic("cache: unencodable key part: " + err.Error())
	}
	return kind + ":" + Hash(data)
}

// DefaultKeyer builds plain, unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// PayloadKey hashes the source so URLs with query strings stay filesystem safe.
func (DefaultKeyer) PayloadKey(source string) string {
	return digest("payload", source)
}

// ArtifactKey hashes the payload hash with every render setting.
func (DefaultKeyer) ArtifactKey(payloadHash string, opts ArtifactKeyOpts) string {
	return digest("artifact", payloadHash, opts)
}

// ScopedKeyer prepends a fixed scope to every key of another Keyer. The CLI
// scopes by release so a new binary never serves artifacts laid out by an
// older one.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	Inner Keyer
	Scope string
}

// NewScopedKeyer scopes inner, or the default scheme when inner is nil.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{Inner: inner, Scope: scope}
}

func (k ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.Scope + k.Inner.HTTPKey(namespace, key)
}

func (k ScopedKeyer) PayloadKey(source string) string {
	return k.Scope + k.Inner.PayloadKey(source)
}

func (k ScopedKeyer) ArtifactKey(payloadHash string, opts ArtifactKeyOpts) string {
	return k.Scope + k.Inner.ArtifactKey(payloadHash, opts)
}
