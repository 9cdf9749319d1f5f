// Package reconcile classifies nodes between two renders.
//
// Identity is the node id and nothing else: a node that moved is still the
// same node, and a node that vanished and reappeared is entering again.
package reconcile

import (
	"fmt"
	"slices"

	"github.com/matzehuels/prereqtree/pkg/errors"
	"github.com/matzehuels/prereqtree/pkg/tree"
)

// Diff is the three-way classification of two visible id sets. Each slice
// is sorted ascending, which is pre-order since ids are assigned that way.
type Diff struct {
	Entering []tree.NodeID `json:"entering"`
	Updating []tree.NodeID `json:"updating"`
	Exiting  []tree.NodeID `json:"exiting"`
}

// Compute diffs the previously rendered set against the newly visible one.
// Every id in the union lands in exactly one of the three slices.
func Compute(old, cur tree.IDSet) Diff {
	d := Diff{
		Entering: []tree.NodeID{},
		Updating: []tree.NodeID{},
		Exiting:  []tree.NodeID{},
	}
	for id := range cur {
		if old.Has(id) {
			d.Updating = append(d.Updating, id)
		} else {
			d.Entering = append(d.Entering, id)
		}
	}
	for id := range old {
		if !cur.Has(id) {
			d.Exiting = append(d.Exiting, id)
		}
	}
	slices.Sort(d.Entering)
	slices.Sort(d.Updating)
	slices.Sort(d.Exiting)
	return d
}

// Empty reports whether nothing enters or exits. Updating nodes alone do
// not make a diff non-empty since their identity set is unchanged.
func (d Diff) Empty() bool {
	return len(d.Entering) == 0 && len(d.Exiting) == 0
}

// Len returns the size of the union of both sets.
func (d Diff) Len() int {
	return len(d.Entering) + len(d.Updating) + len(d.Exiting)
}

// Phase returns the classification of id, or false if id is in neither set.
func (d Diff) Phase(id tree.NodeID) (Phase, bool) {
	switch {
	case contains(d.Entering, id):
		return Enter, true
	case contains(d.Updating, id):
		return Update, true
	case contains(d.Exiting, id):
		return Exit, true
	}
	return 0, false
}

func contains(ids []tree.NodeID, id tree.NodeID) bool {
	_, ok := slices.BinarySearch(ids, id)
	return ok
}

func (d Diff) String() string {
	return fmt.Sprintf("entering=%v updating=%v exiting=%v", d.Entering, d.Updating, d.Exiting)
}

// Phase is the transition a node goes through in one render cycle.
type Phase int

const (
	Enter Phase = iota + 1
	Update
	Exit
)

func (p Phase) String() string {
	switch p {
	case Enter:
		return "enter"
	case Update:
		return "update"
	case Exit:
		return "exit"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name written by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, q := range []Phase{Enter, Update, Exit} {
		if string(text) == q.String() {
			*p = q
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown phase %q", text)
}
