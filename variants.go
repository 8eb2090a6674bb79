package motion

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Variant is a named target state.
type Variant struct {
	Targets Targets
	// Transition applies to every target that does not carry its own. Its
	// Orchestration schedules children that inherit this variant's name.
	Transition *Transition
}

// targets returns v's targets with the variant transition filled in for
// targets that do not declare one.
func (v Variant) targets() Targets {
	out := v.Targets.Clone()
	for p, t := range out {
		if t.Transition == nil {
			t.Transition = v.Transition
			out[p] = t
		}
	}
	return out
}

// VariantTable maps variant names to target states. A table is immutable once
// built and may be shared by any number of nodes.
type VariantTable struct {
	name     string
	variants map[string]Variant
}

// NewVariantTable validates and copies variants. name is only used in error
// messages and logs.
func NewVariantTable(name string, variants map[string]Variant) (*VariantTable, error) {
	t := &VariantTable{name: name, variants: make(map[string]Variant, len(variants))}
	for _, vn := range sortedKeys(variants) {
		v := variants[vn]
		field := "variants." + vn

		var cp Variant
		if v.Transition != nil {
			tr := v.Transition.normalized()
			if err := tr.Validate(); err != nil {
				return nil, withContext(err, "NewVariantTable", "", field+".transition")
			}
			cp.Transition = &tr
		}
		cp.Targets = make(Targets, len(v.Targets))
		for _, p := range sortedKeys(v.Targets) {
			tg := v.Targets[p]
			if p >= numProperties {
				return nil, &ConfigError{Op: "NewVariantTable", Field: field, Err: fmt.Errorf("%w: %s", ErrUnknownProperty, p)}
			}
			if math.IsInf(tg.Value, 0) {
				return nil, &ConfigError{Op: "NewVariantTable", Field: field + "." + p.String(), Err: fmt.Errorf("%w: target is infinite", ErrInvalidTiming)}
			}
			if tg.Transition != nil {
				tr := tg.Transition.normalized()
				if err := tr.Validate(); err != nil {
					return nil, withContext(err, "NewVariantTable", "", field+"."+p.String()+".transition")
				}
				tg.Transition = &tr
			}
			cp.Targets[p] = tg
		}
		t.variants[vn] = cp
	}
	return t, nil
}

// MustVariantTable is like NewVariantTable but panics on error. It is meant
// for tables declared as package-level literals.
func MustVariantTable(name string, variants map[string]Variant) *VariantTable {
	t, err := NewVariantTable(name, variants)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table's name.
func (t *VariantTable) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Lookup returns the named variant.
func (t *VariantTable) Lookup(name string) (Variant, bool) {
	if t == nil || name == "" {
		return Variant{}, false
	}
	v, ok := t.variants[name]
	return v, ok
}

// Has reports whether the table declares name.
func (t *VariantTable) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Names returns the declared variant names in sorted order.
func (t *VariantTable) Names() []string {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.variants))
}
