package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/prereqtree/pkg/errors"
)

// RawNode is the nested payload returned by the prerequisite-resolution
// service:
//
//	{
//	  "name": "CS2040",
//	  "children": [
//	    {"name": "CS1010", "children": []},
//	    {"name": "MA1521"}
//	  ]
//	}
//
// The display label is Name, falling back to ID. Title and Tags are kept as
// decoration metadata. A missing or empty children list denotes a leaf.
type RawNode struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name,omitempty"`
	Title    string    `json:"title,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Children []RawNode `json:"children,omitempty"`
}

// Load builds a [Tree] from a raw payload, assigning fresh ids in
// depth-first pre-order. Every node starts expanded, so the visible set
// after Load is the full tree.
//
// Load fails with [errors.ErrCodeMalformedTree] if any node lacks a usable
// label. No partially-built tree is ever returned.
func Load(raw RawNode) (*Tree, error) {
	t := &Tree{index: make(map[NodeID]*Node)}
	next := NodeID(1)

	var build func(r RawNode, parent *Node, depth int, path string) (*Node, error)
	build = func(r RawNode, parent *Node, depth int, path string) (*Node, error) {
		label := r.Name
		if label == "" {
			label = r.ID
		}
		if err := errors.ValidateLabel(label); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedTree, err, "node at %s", path)
		}

		n := &Node{
			id:     next,
			label:  label,
			depth:  depth,
			parent: parent,
			meta:   metaFromRaw(r),
		}
		next++
		t.index[n.id] = n

		n.children = make([]*Node, 0, len(r.Children))
		for i, rc := range r.Children {
			c, err := build(rc, n, depth+1, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, c)
		}
		n.visible = slices.Clone(n.children)
		return n, nil
	}

	root, err := build(raw, nil, 0, "$")
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

func metaFromRaw(r RawNode) Metadata {
	m := Metadata{}
	if r.ID != "" {
		m[MetaCode] = r.ID
	}
	if r.Title != "" {
		m[MetaTitle] = r.Title
	}
	if len(r.Tags) > 0 {
		m[MetaTags] = slices.Clone(r.Tags)
	}
	return m
}

// Parse decodes a JSON payload and loads it with [Load].
//
// The payload must be exactly one JSON object. Empty input, null, arrays,
// scalars, trailing data and undecodable JSON all fail with
// [errors.ErrCodeMalformedTree].
func Parse(data []byte) (*Tree, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedTree, "empty payload")
	}
	if trimmed[0] != '{' {
		return nil, errors.New(errors.ErrCodeMalformedTree, "payload must be a single JSON object with one root")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var raw RawNode
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedTree, err, "decode payload")
	}
	// Anything after the root, including a stray closing bracket, is an error.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New(errors.ErrCodeMalformedTree, "trailing data after root object")
	}
	return Load(raw)
}

// Read decodes a payload from r. See [Parse].
func Read(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return Parse(data)
}

// ReadFile decodes the payload stored at path. See [Parse].
func ReadFile(path string) (*Tree, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "payload %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
