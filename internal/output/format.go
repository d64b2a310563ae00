package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	sigsyaml "sigs.k8s.io/yaml"
)

// Encoder writes v to w in one output format.
type Encoder func(w io.Writer, v any) error

// Registry maps format names to encoders.
type Registry struct {
	mu       sync.RWMutex
	encoders map[string]Encoder
}

// NewRegistry creates an empty encoder registry.
func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[string]Encoder),
	}
}

// Register adds an encoder under the given format name.
// Existing entries for the same name are overwritten.
func (r *Registry) Register(name string, enc Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.encoders[name] = enc
}

// Encoder returns the encoder for the given format, or an error if not found.
func (r *Registry) Encoder(name string) (Encoder, error) {
	r.mu.RLock()
	enc, ok := r.encoders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", name, r.AvailableFormats())
	}

	return enc, nil
}

// Formats returns the sorted list of registered format names.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// AvailableFormats returns a comma-separated string of registered format names.
func (r *Registry) AvailableFormats() string {
	formats := r.Formats()
	if len(formats) == 0 {
		return "none"
	}

	return strings.Join(formats, ", ")
}

// DefaultRegistry returns a registry with the built-in json and yaml encoders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("json", EncodeJSON)
	r.Register("yaml", EncodeYAML)

	return r
}

// EncodeJSON writes v as indented JSON followed by a newline.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// EncodeYAML writes v as YAML. Field names follow the json struct tags.
func EncodeYAML(w io.Writer, v any) error {
	data, err := sigsyaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	_, err = w.Write(data)

	return err
}
