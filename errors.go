package motion

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by ConfigError. Match them with errors.Is.
var (
	ErrUnknownVariant     = errors.New("unknown variant")
	ErrUnknownProperty    = errors.New("unknown property")
	ErrUnknownEasing      = errors.New("unknown easing")
	ErrNonMonotonicEasing = errors.New("easing is not monotonic from 0 to 1")
	ErrInvalidSpring      = errors.New("invalid spring parameters")
	ErrInvalidTiming      = errors.New("invalid timing")
	ErrInfiniteExit       = errors.New("exit state repeats forever")
	ErrUnknownNode        = errors.New("unknown node")
	ErrDuplicateNode      = errors.New("duplicate node id")
)

// ConfigError reports a bad declaration. It is returned to whoever declared
// the state; the engine never clamps a bad value into a different animation.
type ConfigError struct {
	// Op is the operation that rejected the declaration (e.g. "Scene.Mount").
	Op string
	// Node is the offending node, if any.
	Node NodeID
	// Field names the declaration field (e.g. "animate", "transition.mass").
	Field string
	// Err is the underlying cause, usually one of the sentinels above.
	Err error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Node != "" && e.Field != "":
		return fmt.Sprintf("motion: %s: node %q: %s: %v", e.Op, e.Node, e.Field, e.Err)
	case e.Node != "":
		return fmt.Sprintf("motion: %s: node %q: %v", e.Op, e.Node, e.Err)
	case e.Field != "":
		return fmt.Sprintf("motion: %s: %s: %v", e.Op, e.Field, e.Err)
	default:
		return fmt.Sprintf("motion: %s: %v", e.Op, e.Err)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// withContext fills in Op and Node on a ConfigError produced deeper down, or
// wraps a plain error.
func withContext(err error, op string, node NodeID, field string) error {
	if err == nil {
		return nil
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		out := *ce
		if out.Op == "" {
			out.Op = op
		}
		if out.Node == "" {
			out.Node = node
		}
		if field != "" {
			if out.Field == "" {
				out.Field = field
			} else {
				out.Field = field + "." + out.Field
			}
		}
		return &out
	}
	return &ConfigError{Op: op, Node: node, Field: field, Err: err}
}

// Inconsistency describes a recoverable runtime problem. Inconsistencies are
// absorbed with a deterministic fallback and reported to the logger, metrics
// and event sink; they are never returned to callers.
type Inconsistency struct {
	Op     string
	Node   NodeID
	Reason string
}

func (i Inconsistency) String() string {
	if i.Node != "" {
		return fmt.Sprintf("%s: node %q: %s", i.Op, i.Node, i.Reason)
	}
	return fmt.Sprintf("%s: %s", i.Op, i.Reason)
}
