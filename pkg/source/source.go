// Package source reads prerequisite payloads from files and HTTP endpoints.
//
// The payload is read once, before a view is built; nothing here is used
// while the user toggles nodes. HTTP responses are cached by URL and
// transient failures (network errors, 5xx) are retried with backoff.
package source

import (
	"context"
	"os"

	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

// Read returns the raw payload named by ref: an http(s) URL goes through
// f, anything else is read from disk. A nil f uses [NewFetcher] defaults.
func Read(ctx context.Context, f *Fetcher, ref string) ([]byte, error) {
	if errors.IsURL(ref) {
		if f == nil {
			f = NewFetcher(nil, nil)
		}
		return f.Fetch(ctx, ref)
	}
	return ReadFile(ref)
}

// Load reads ref with [Read] and parses it into a tree.
func Load(ctx context.Context, f *Fetcher, ref string) (*tree.Tree, []byte, error) {
	data, err := Read(ctx, f, ref)
	if err != nil {
		return nil, nil, err
	}
	t, err := tree.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return t, data, nil
}

// ReadFile reads a payload from disk.
func ReadFile(path string) ([]byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "payload file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return data, nil
}
