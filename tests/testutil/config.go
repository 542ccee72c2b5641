package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/systmms/confsecrets/internal/config"
	"github.com/systmms/confsecrets/internal/logging"
)

// TestConfigBuilder builds confsecrets.yaml documents for tests. Values keep
// the order they are added in.
//
// Example usage:
//
//	cfg := NewTestConfig(t).
//	    WithTypeOption("1password", "account", "team").
//	    WithValue("HOST", "localhost").
//	    WithValue("DB_PASSWORD", map[string]any{"ENV": "DB_PASSWORD"}).
//	    Load()
type TestConfigBuilder struct {
	t       *testing.T
	options map[string]any
	values  []*yaml.Node
}

// NewTestConfig creates a builder for an empty version 0 document.
func NewTestConfig(t *testing.T) *TestConfigBuilder {
	t.Helper()
	return &TestConfigBuilder{t: t, options: map[string]any{}}
}

// WithOption sets a top-level resolution option.
func (b *TestConfigBuilder) WithOption(key string, value any) *TestConfigBuilder {
	b.options[key] = value
	return b
}

// WithTypeOption sets a resolution option of one variant, e.g. "1password".
func (b *TestConfigBuilder) WithTypeOption(typeName, key string, value any) *TestConfigBuilder {
	sub, _ := b.options[typeName].(map[string]any)
	if sub == nil {
		sub = map[string]any{}
		b.options[typeName] = sub
	}
	sub[key] = value
	return b
}

// WithValue appends a named configuration value.
func (b *TestConfigBuilder) WithValue(name string, value any) *TestConfigBuilder {
	b.t.Helper()

	var node yaml.Node
	if err := node.Encode(value); err != nil {
		b.t.Fatalf("Failed to encode value %s: %v", name, err)
	}
	b.values = append(b.values, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, &node)
	return b
}

// YAML renders the document.
func (b *TestConfigBuilder) YAML() string {
	b.t.Helper()

	var options yaml.Node
	if err := options.Encode(b.options); err != nil {
		b.t.Fatalf("Failed to encode options: %v", err)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "version"},
		{Kind: yaml.ScalarNode, Tag: "!!int", Value: "0"},
		{Kind: yaml.ScalarNode, Value: "options"},
		&options,
		{Kind: yaml.ScalarNode, Value: "values"},
		{Kind: yaml.MappingNode, Content: b.values},
	}}

	out, err := yaml.Marshal(doc)
	if err != nil {
		b.t.Fatalf("Failed to render config: %v", err)
	}
	return string(out)
}

// Write writes the document to a temporary confsecrets.yaml and returns its path.
func (b *TestConfigBuilder) Write() string {
	b.t.Helper()
	return WriteTestConfig(b.t, b.YAML())
}

// Load writes the document and loads it, failing the test on error.
func (b *TestConfigBuilder) Load() *config.Config {
	b.t.Helper()

	cfg := &config.Config{Path: b.Write(), Logger: logging.Discard()}
	if err := cfg.Load(); err != nil {
		b.t.Fatalf("Failed to load test config: %v", err)
	}
	return cfg
}

// WriteTestConfig writes yamlContent to a temporary confsecrets.yaml and
// returns its path.
func WriteTestConfig(t *testing.T, yamlContent string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultPath)
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}
