package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/assetsync/internal/output"
)

// Store persists the auto-sync flag in a YAML config file. Only the
// auto-sync key is touched; comments and other keys are kept.
type Store struct {
	mu       sync.Mutex
	path     string
	autoSync bool
}

// NewStore returns a Store backed by path with the given current value.
func NewStore(path string, autoSync bool) *Store {
	return &Store{path: path, autoSync: autoSync}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// AutoSync returns the current value.
func (s *Store) AutoSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.autoSync
}

// SetAutoSync stores enabled in memory and in the backing file.
func (s *Store) SetAutoSync(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := SetBool(s.path, "auto-sync", enabled); err != nil {
		return err
	}

	s.autoSync = enabled

	return nil
}

// SetBool sets key to value in the YAML mapping stored at path, creating
// the file when it does not exist. An existing camelCase alias of key is
// updated in place instead of adding the canonical spelling.
func SetBool(path, key string, value bool) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: top level is not a mapping", path)
	}

	setMappingValue(root, keyNames(key), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(value)})

	out, err := encode(&doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err := output.NewFileWriter(path, output.WithPermissions(0o644)).Write(out); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// keyNames returns key followed by its aliases.
func keyNames(key string) []string {
	names := []string{key}

	for alias, k := range aliases {
		if k == key {
			names = append(names, alias)
		}
	}

	return names
}

func setMappingValue(m *yaml.Node, names []string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		for _, n := range names {
			if m.Content[i].Value == n {
				old := m.Content[i+1]
				value.HeadComment = old.HeadComment
				value.LineComment = old.LineComment
				value.FootComment = old.FootComment
				m.Content[i+1] = value

				return
			}
		}
	}

	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: names[0]}, value)
}

func encode(n *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(n); err != nil {
		return nil, err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Marshal renders cfg as a commented .assetsync.yaml document. Only the
// project-level keys are written.
func Marshal(cfg *Config) ([]byte, error) {
	entries := []struct {
		key, value, tag, comment string
	}{
		{"auto-sync", strconv.FormatBool(cfg.AutoSync), "!!bool", "Regenerate on every change below the asset directory."},
		{"assets-directory", cfg.AssetsDirectory, "!!str", "Asset root, relative to the project."},
		{"output-directory", filepath.ToSlash(cfg.OutputDir()), "!!str", "Directory receiving the generated Dart files."},
		{"manifest", cfg.Manifest, "!!str", ""},
		{"class-name", cfg.ClassName, "!!str", "Name of the generated aggregator class."},
		{"debounce", cfg.Debounce.String(), "!!str", "Quiet period before a change triggers a sync."},
		{"catch-up", strconv.FormatBool(cfg.CatchUp), "!!bool", "Run one more pass for changes made during a sync."},
	}

	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range entries {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.key, HeadComment: e.comment},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: e.tag, Value: e.value},
		)
	}

	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "assetsync configuration",
		Content:     []*yaml.Node{m},
	}

	return encode(doc)
}
