package properties

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrSyntax marks a malformed properties file
var ErrSyntax = errors.New("properties syntax error")

// Properties is a case-insensitive set of key/value pairs read from .ism files
type Properties struct {
	values map[string]string
}

// New returns an empty property set
func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Load reads the given files in order. Keys set by an earlier file win, so the
// building file goes first and defaults files follow.
func Load(paths ...string) (*Properties, error) {
	p := New()
	for _, path := range paths {
		if err := p.ReadFile(path); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ReadFile merges a file into the set without overwriting existing keys.
// Files ending in .yaml or .yml are parsed as YAML.
func (p *Properties) ReadFile(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return p.readYAML(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening properties file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		// only '#' starts a comment
		if line == "" || line[0] == '#' {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("%w: invalid format in file '%s' on line %d", ErrSyntax, path, lineNum)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%w: missing property key in file '%s' on line %d", ErrSyntax, path, lineNum)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("%w: missing property value in file '%s' on line %d", ErrSyntax, path, lineNum)
		}
		p.putIfAbsent(key, value)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading properties file %s: %w", path, err)
	}
	return nil
}

// readYAML maps top-level scalars to properties and numeric sequences to
// comma separated vectors
func (p *Properties) readYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("opening properties file %s: %w", path, err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parsing yaml file '%s': %v", ErrSyntax, path, err)
	}

	for key, raw := range doc {
		switch v := raw.(type) {
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, scalarString(item))
			}
			p.putIfAbsent(key, strings.Join(parts, ","))
		case map[string]interface{}:
			return fmt.Errorf("%w: nested mapping for key '%s' in file '%s'", ErrSyntax, key, path)
		case nil:
			return fmt.Errorf("%w: missing property value for key '%s' in file '%s'", ErrSyntax, key, path)
		default:
			p.putIfAbsent(key, scalarString(v))
		}
	}
	return nil
}

func scalarString(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

func (p *Properties) putIfAbsent(key, value string) {
	k := strings.ToLower(strings.TrimSpace(key))
	if _, exists := p.values[k]; exists {
		return
	}
	p.values[k] = value
}

// Set stores a value, replacing any existing one
func (p *Properties) Set(key, value string) {
	p.values[strings.ToLower(key)] = value
}

// Get returns the raw value for key
func (p *Properties) Get(key string) (string, bool) {
	v, ok := p.values[strings.ToLower(key)]
	return v, ok
}

// Contains reports whether key is set
func (p *Properties) Contains(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Float returns the value for key as a float. The bool is false when the key
// is missing or the value is not numeric.
func (p *Properties) Float(key string) (float64, bool) {
	v, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FloatVector parses a comma separated list of numbers
func (p *Properties) FloatVector(key string) ([]float64, error) {
	v, ok := p.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: missing property %s", ErrSyntax, key)
	}

	fields := strings.Split(v, ",")
	out := make([]float64, 0, len(fields))
	for _, field := range fields {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s contains non-numeric value %q", ErrSyntax, key, field)
		}
		out = append(out, f)
	}
	return out, nil
}

// Keys returns every key in sorted order
func (p *Properties) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys
func (p *Properties) Len() int {
	return len(p.values)
}
