package jsonval

import (
	"fmt"
	"strconv"
	"strings"
)

// Step moves from one value to a nested one.
type Step func(Value) Value

func Key(name string) Step {
	return func(v Value) Value { return v.Key(name) }
}

func Index(i int) Step {
	return func(v Value) Value { return v.Index(i) }
}

func Where(field, value string) Step {
	return func(v Value) Value { return v.Where(field, value) }
}

// Path is a parsed dotted path like `store.meta[badgeType=ETD].text` or
// `feedItems[0].type`.
type Path struct {
	expr  string
	steps []Step
}

func (p Path) String() string {
	return p.expr
}

// Get walks the path from v, stopping at the first absent value.
func (p Path) Get(v Value) Value {
	for _, step := range p.steps {
		v = step(v)
		if !v.present {
			return Value{}
		}
	}
	return v
}

// Get walks a sequence of steps from v.
func (v Value) Get(steps ...Step) Value {
	return Path{steps: steps}.Get(v)
}

// ParsePath parses a dotted path. Each segment is a member name optionally
// followed by any number of `[n]` index or `[field=value]` filter suffixes.
func ParsePath(expr string) (Path, error) {
	if strings.TrimSpace(expr) == "" {
		return Path{}, fmt.Errorf("empty path")
	}

	var steps []Step
	for _, segment := range strings.Split(expr, ".") {
		name := segment
		suffixes := ""
		if i := strings.IndexByte(segment, '['); i >= 0 {
			name = segment[:i]
			suffixes = segment[i:]
		}
		if name == "" && suffixes == "" {
			return Path{}, fmt.Errorf("path %q: empty segment", expr)
		}
		if name != "" {
			steps = append(steps, Key(name))
		}

		for suffixes != "" {
			end := strings.IndexByte(suffixes, ']')
			if suffixes[0] != '[' || end < 0 {
				return Path{}, fmt.Errorf("path %q: malformed segment %q", expr, segment)
			}
			inner := suffixes[1:end]
			suffixes = suffixes[end+1:]

			if field, value, ok := strings.Cut(inner, "="); ok {
				if field == "" {
					return Path{}, fmt.Errorf("path %q: empty filter field", expr)
				}
				steps = append(steps, Where(field, value))
				continue
			}
			i, err := strconv.Atoi(inner)
			if err != nil {
				return Path{}, fmt.Errorf("path %q: bad index %q", expr, inner)
			}
			steps = append(steps, Index(i))
		}
	}

	return Path{expr: expr, steps: steps}, nil
}

// MustPath is ParsePath for paths that are known at compile time.
func MustPath(expr string) Path {
	p, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}
	return p
}
