package grid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rxtech-lab/forest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Params is one point of a parameter grid, keyed by parameter name.
type Params map[string]any

// Canonical renders params as "a=1,b=x" with sorted keys.
func (p Params) Canonical() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, p[k])
	}

	return strings.Join(parts, ",")
}

// ParamGrid is an ordered set of parameters with candidate values.
type ParamGrid struct {
	names  []string
	values [][]any
}

func NewParamGrid() *ParamGrid {
	return &ParamGrid{}
}

// Add appends a parameter. Adding a name twice replaces its values in place.
func (g *ParamGrid) Add(name string, values ...any) *ParamGrid {
	for i, existing := range g.names {
		if existing == name {
			g.values[i] = values

			return g
		}
	}

	g.names = append(g.names, name)
	g.values = append(g.values, values)

	return g
}

// Names returns the parameter names in insertion order.
func (g *ParamGrid) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)

	return out
}

// Size is the number of combinations.
func (g *ParamGrid) Size() int {
	if len(g.names) == 0 {
		return 0
	}

	n := 1
	for _, values := range g.values {
		n *= len(values)
	}

	return n
}

// Combinations returns the exhaustive product. The last parameter varies fastest.
func (g *ParamGrid) Combinations() []Params {
	total := g.Size()
	if total == 0 {
		return nil
	}

	out := make([]Params, 0, total)
	index := make([]int, len(g.names))

	for range total {
		params := make(Params, len(g.names))
		for i, name := range g.names {
			params[name] = g.values[i][index[i]]
		}

		out = append(out, params)

		for i := len(index) - 1; i >= 0; i-- {
			index[i]++
			if index[i] < len(g.values[i]) {
				break
			}

			index[i] = 0
		}
	}

	return out
}

// UnmarshalYAML decodes a mapping of name to value list, keeping key order.
// A scalar value is a single candidate.
func (g *ParamGrid) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "grid must be a mapping, line %d", value.Line)
	}

	*g = ParamGrid{}

	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value
		node := value.Content[i+1]

		var values []any

		switch node.Kind {
		case yaml.SequenceNode:
			if err := node.Decode(&values); err != nil {
				return err
			}
		default:
			var single any
			if err := node.Decode(&single); err != nil {
				return err
			}

			values = []any{single}
		}

		if len(values) == 0 {
			return errors.Newf(errors.ErrCodeGridEmpty, "grid parameter %s has no values", name)
		}

		g.Add(name, values...)
	}

	return nil
}
