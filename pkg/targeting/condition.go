package targeting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
)

// Comparator is the atom comparison operator.
type Comparator string

const (
	// Equal matches when the end value is among the actual values.
	Equal Comparator = "==="

	// NotEqual is the negation of Equal.
	NotEqual Comparator = "!=="
)

// Valid reports whether the comparator is known.
func (c Comparator) Valid() bool {
	return c == Equal || c == NotEqual
}

// End is the expected value of an atom: a single value or a list evaluated
// with any-of semantics.
type End struct {
	Values []string
	List   bool
}

// Value creates a single-valued end.
func Value(v string) End {
	return End{Values: []string{v}}
}

// AnyOf creates a list end.
func AnyOf(values ...string) End {
	return End{Values: values, List: true}
}

// IsEmpty reports whether the end carries no usable value.
func (e End) IsEmpty() bool {
	for _, v := range e.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// MarshalJSON encodes single ends as strings and list ends as arrays.
func (e End) MarshalJSON() ([]byte, error) {
	if e.List {
		if e.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(e.Values)
	}
	if len(e.Values) == 0 {
		return []byte(`""`), nil
	}
	return json.Marshal(e.Values[0])
}

// UnmarshalJSON accepts a string, a number or a list of either.
func (e *End) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	end, err := endFrom(v)
	if err != nil {
		return err
	}
	*e = end
	return nil
}

// Atom is one atomic condition.
type Atom struct {
	Root       string     `json:"root"`
	End        End        `json:"end"`
	Comparator Comparator `json:"comparator"`
}

// Group is a conjunction of atoms.
type Group []Atom

// ConditionSet is a disjunction of groups. The zero value matches every
// context.
//
// Decoding never fails: input that is not a valid group/atom structure yields
// a corrupt set that never matches and re-encodes to the original bytes.
type ConditionSet struct {
	Groups []Group

	raw json.RawMessage
	err error
}

// NewConditionSet builds a condition set from groups.
func NewConditionSet(groups ...Group) ConditionSet {
	return ConditionSet{Groups: groups}
}

// IsEmpty reports whether the set is unconditional.
func (cs ConditionSet) IsEmpty() bool {
	return cs.err == nil && len(cs.Groups) == 0
}

// Corrupt reports whether the stored representation could not be decoded.
func (cs ConditionSet) Corrupt() bool {
	return cs.err != nil
}

// Err returns the decode error of a corrupt set.
func (cs ConditionSet) Err() error {
	return cs.err
}

// MarshalJSON encodes the set as a list of groups.
func (cs ConditionSet) MarshalJSON() ([]byte, error) {
	if cs.err != nil && len(cs.raw) > 0 {
		return cs.raw, nil
	}
	if len(cs.Groups) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(cs.Groups)
}

// UnmarshalJSON decodes a condition set. It never returns an error.
func (cs *ConditionSet) UnmarshalJSON(data []byte) error {
	*cs = ParseConditionSet(data)
	return nil
}

// ParseConditionSet decodes the stored representation of a condition set.
//
// Accepted shapes: a list of groups, an object whose keys are group indexes,
// and either of these embedded in a JSON string. null, "", {} and [] decode
// to the empty set. Atoms accept "condition" as an alias of "comparator".
func ParseConditionSet(data []byte) ConditionSet {
	groups, err := decodeGroups(data, 0)
	if err != nil {
		return ConditionSet{
			raw: slices.Clone(data),
			err: &DecodeError{Cause: err},
		}
	}
	return ConditionSet{Groups: groups}
}

func decodeGroups(data []byte, depth int) ([]Group, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	// Stored metadata is often a JSON document inside a JSON string.
	if s, ok := v.(string); ok {
		if depth > 0 {
			return nil, fmt.Errorf("condition set is doubly encoded")
		}
		return decodeGroups([]byte(s), depth+1)
	}

	items, err := listFrom(v)
	if err != nil {
		return nil, fmt.Errorf("condition set: %w", err)
	}

	groups := make([]Group, 0, len(items))
	for i, item := range items {
		atoms, err := listFrom(item)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		group := make(Group, 0, len(atoms))
		for j, raw := range atoms {
			atom, err := atomFrom(raw)
			if err != nil {
				return nil, fmt.Errorf("group %d atom %d: %w", i, j, err)
			}
			group = append(group, atom)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// listFrom accepts JSON arrays and index-keyed objects, returning the items in
// index order. null yields an empty list.
func listFrom(v any) ([]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return t, nil
	case map[string]any:
		keys := make([]int, 0, len(t))
		for k := range t {
			idx, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("unexpected key %q", k)
			}
			keys = append(keys, idx)
		}
		sort.Ints(keys)
		out := make([]any, 0, len(keys))
		for _, idx := range keys {
			out = append(out, t[strconv.Itoa(idx)])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", v)
	}
}

func atomFrom(v any) (Atom, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Atom{}, fmt.Errorf("expected object, got %T", v)
	}

	var atom Atom
	switch root := obj["root"].(type) {
	case string:
		atom.Root = root
	case nil:
	default:
		return Atom{}, fmt.Errorf("root must be a string, got %T", root)
	}

	cmp := obj["comparator"]
	if cmp == nil {
		cmp = obj["condition"]
	}
	switch c := cmp.(type) {
	case string:
		atom.Comparator = Comparator(c)
	case nil:
		atom.Comparator = Equal
	default:
		return Atom{}, fmt.Errorf("comparator must be a string, got %T", c)
	}

	end, err := endFrom(obj["end"])
	if err != nil {
		return Atom{}, err
	}
	atom.End = end
	return atom, nil
}

func endFrom(v any) (End, error) {
	switch t := v.(type) {
	case nil:
		return End{}, nil
	case string:
		return Value(t), nil
	case float64:
		return Value(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case []any:
		values := make([]string, 0, len(t))
		for _, item := range t {
			switch iv := item.(type) {
			case string:
				values = append(values, iv)
			case float64:
				values = append(values, strconv.FormatFloat(iv, 'f', -1, 64))
			default:
				return End{}, fmt.Errorf("end list items must be strings or numbers, got %T", item)
			}
		}
		return AnyOf(values...), nil
	default:
		return End{}, fmt.Errorf("end must be a string, number or list, got %T", v)
	}
}

// Clone returns a deep copy of the set.
func (cs ConditionSet) Clone() ConditionSet {
	out := ConditionSet{
		raw: slices.Clone(cs.raw),
		err: cs.err,
	}
	if cs.Groups == nil {
		return out
	}
	out.Groups = make([]Group, len(cs.Groups))
	for i, group := range cs.Groups {
		g := make(Group, len(group))
		for j, atom := range group {
			atom.End.Values = slices.Clone(atom.End.Values)
			g[j] = atom
		}
		out.Groups[i] = g
	}
	return out
}
