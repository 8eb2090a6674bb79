package motion

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Definitions is a parsed definition file: an optional default transition
// and named variant tables.
//
//	transition:
//	  duration: 0.3
//	  ease: easeOut
//	variants:
//	  list:
//	    hidden: {opacity: 0}
//	    visible:
//	      opacity: 1
//	      transition: {staggerChildren: 0.15, delayChildren: 1}
//	  item:
//	    hidden: {opacity: 0, y: 20}
//	    visible: {opacity: 1, y: 0}
//	    hover:
//	      scale: {value: 1.1, transition: {type: spring, stiffness: 300, damping: 20}}
type Definitions struct {
	// Transition is the file's default transition, or nil if it declares none.
	Transition *Transition

	tables map[string]*VariantTable
}

type rawDefinitions struct {
	Transition map[string]any                       `yaml:"transition"`
	Variants   map[string]map[string]map[string]any `yaml:"variants"`
}

// LoadDefinitionsFile reads and parses a definition file.
func LoadDefinitionsFile(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}
	return LoadDefinitions(data)
}

// LoadDefinitions parses a YAML (or JSON) definition document. Every
// transition and variant is validated; the first problem is returned as a
// *ConfigError naming the offending field.
func LoadDefinitions(data []byte) (*Definitions, error) {
	const op = "LoadDefinitions"
	var raw rawDefinitions
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Op: op, Err: fmt.Errorf("parse definitions: %w", err)}
	}

	d := &Definitions{tables: make(map[string]*VariantTable, len(raw.Variants))}
	base := DefaultTransition()
	if raw.Transition != nil {
		t, err := ParseTransition(raw.Transition)
		if err != nil {
			return nil, withContext(err, op, "", "transition")
		}
		d.Transition = &t
		base = t
	}
	// Variant transitions start from the file default but never inherit its
	// child scheduling.
	base.Orchestration = Orchestration{StaggerDirection: 1}
	base.Properties = nil

	for _, tableName := range sortedKeys(raw.Variants) {
		variants := make(map[string]Variant)
		for _, vn := range sortedKeys(raw.Variants[tableName]) {
			field := "variants." + tableName + "." + vn
			v, err := decodeVariant(base, raw.Variants[tableName][vn])
			if err != nil {
				return nil, withContext(err, op, "", field)
			}
			variants[vn] = v
		}
		t, err := NewVariantTable(tableName, variants)
		if err != nil {
			return nil, withContext(err, op, "", "")
		}
		d.tables[tableName] = t
	}
	return d, nil
}

// decodeVariant decodes one variant bag: property keys map to a number or a
// {value, transition} object, and the transition key holds the variant's
// transition.
func decodeVariant(base Transition, bag map[string]any) (Variant, error) {
	v := Variant{Targets: make(Targets, len(bag))}
	for _, key := range sortedKeys(bag) {
		raw := bag[key]
		if key == "transition" {
			opts, ok := raw.(map[string]any)
			if !ok {
				return Variant{}, &ConfigError{Field: key, Err: fmt.Errorf("%w: transition must be an object, got %T", ErrInvalidTiming, raw)}
			}
			t, err := parseTransitionOver(base, opts)
			if err != nil {
				return Variant{}, withContext(err, "", "", key)
			}
			v.Transition = &t
			continue
		}

		p, err := ParseProperty(key)
		if err != nil {
			return Variant{}, &ConfigError{Field: key, Err: err}
		}
		tg, err := decodeTarget(base, raw)
		if err != nil {
			return Variant{}, withContext(err, "", "", key)
		}
		v.Targets[p] = tg
	}
	return v, nil
}

func decodeTarget(base Transition, raw any) (Target, error) {
	if f, ok := toFloat(raw); ok {
		return Target{Value: f}, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Target{}, &ConfigError{Err: fmt.Errorf("%w: target must be a number or {value, transition}, got %T", ErrInvalidTiming, raw)}
	}
	var tg Target
	f, ok := toFloat(obj["value"])
	if !ok || math.IsNaN(f) {
		return Target{}, &ConfigError{Field: "value", Err: fmt.Errorf("%w: missing numeric value", ErrInvalidTiming)}
	}
	tg.Value = f
	for k := range obj {
		if k != "value" && k != "transition" {
			return Target{}, &ConfigError{Field: k, Err: fmt.Errorf("%w: unknown target key %q", ErrInvalidTiming, k)}
		}
	}
	if opts, ok := obj["transition"].(map[string]any); ok {
		t, err := parseTransitionOver(base, opts)
		if err != nil {
			return Target{}, withContext(err, "", "", "transition")
		}
		tg.Transition = &t
	} else if obj["transition"] != nil {
		return Target{}, &ConfigError{Field: "transition", Err: fmt.Errorf("%w: transition must be an object", ErrInvalidTiming)}
	}
	return tg, nil
}

// Table returns the named variant table.
func (d *Definitions) Table(name string) (*VariantTable, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// Tables returns the table names in sorted order.
func (d *Definitions) Tables() []string {
	return sortedKeys(d.tables)
}

// Apply installs the file's default transition on s, if it declares one.
func (d *Definitions) Apply(s *Scene) error {
	if d.Transition == nil {
		return nil
	}
	return s.SetDefaultTransition(*d.Transition)
}
