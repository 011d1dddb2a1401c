package plugin

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options holds arbitrary per-plugin configuration keys.
type Options map[string]any

// Spec pairs a plugin name with the options it will be instantiated with.
type Spec struct {
	Name    string
	Options Options
}

// Normalize flattens a heterogeneous plugin selection into an ordered list of
// specs. Each item is either a bare plugin name (string) or a single-key
// map[string]Options from plugin name to its options. The result contains one
// spec per distinct name, ordered by first insertion; a repeated name keeps
// its original position but its options are replaced by the later occurrence.
//
// Normalize performs no name validation; unknown plugins surface at load time.
// It is a pure function and a fixed point: normalizing the output of a
// previous normalization yields the same list.
func Normalize(items []any) ([]Spec, error) {
	order := make([]string, 0, len(items))
	byName := make(map[string]Options, len(items))

	upsert := func(name string, opts Options) {
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = opts
	}

	for i, item := range items {
		switch v := item.(type) {
		case string:
			upsert(v, Options{})
		case map[string]Options:
			if len(v) != 1 {
				return nil, fmt.Errorf("plugin item %d: expected a single name key, got %d", i, len(v))
			}
			for name, opts := range v {
				if opts == nil {
					opts = Options{}
				}
				upsert(name, opts)
			}
		case Spec:
			opts := v.Options
			if opts == nil {
				opts = Options{}
			}
			upsert(v.Name, opts)
		default:
			return nil, fmt.Errorf("plugin item %d: unsupported type %T", i, item)
		}
	}

	specs := make([]Spec, 0, len(order))
	for _, name := range order {
		specs = append(specs, Spec{Name: name, Options: byName[name]})
	}
	return specs, nil
}

// ParseArg parses the CLI dotted form: either a bare plugin name ("svgo") or
// a single option assignment ("jpegtran.progressive=true"). Option values are
// typed using YAML scalar rules, so "true" becomes a bool and "3" an int.
func ParseArg(s string) (string, Options, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil, fmt.Errorf("empty plugin argument")
	}

	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		if strings.ContainsRune(s, '.') {
			return "", nil, fmt.Errorf("plugin argument %q: option form requires key=value", s)
		}
		return s, Options{}, nil
	}

	ref, value := s[:eq], s[eq+1:]
	dot := strings.IndexByte(ref, '.')
	if dot <= 0 || dot == len(ref)-1 {
		return "", nil, fmt.Errorf("plugin argument %q: expected name.key=value", s)
	}
	name, key := ref[:dot], ref[dot+1:]

	var typed any = value
	if value != "" {
		if err := yaml.Unmarshal([]byte(value), &typed); err != nil {
			typed = value
		}
	}
	return name, Options{key: typed}, nil
}
