package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	cserrors "github.com/systmms/confsecrets/internal/errors"
	"github.com/systmms/confsecrets/internal/logging"
)

// DefaultPath is the configuration file read when --config is not given.
const DefaultPath = "confsecrets.yaml"

//go:embed schema.json
var schemaJSON []byte

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Document       *Document
}

// Document is the confsecrets.yaml structure.
type Document struct {
	Version int
	// Options are the resolution options shared by every value.
	Options map[string]any
	// Values are the named configuration values in document order.
	Values []Entry
}

// Entry is one named configuration value, literal or reference.
type Entry struct {
	Name  string
	Value any
}

// Load reads, parses and validates the configuration file.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return cserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create confsecrets.yaml or pass --config",
				Err:        err,
			}
		}
		return cserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	doc, err := Parse(data)
	if err != nil {
		return err
	}
	if c.Logger != nil {
		c.Logger.Debug("Loaded %d values from %s", len(doc.Values), c.Path)
	}

	c.Document = doc
	return nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Document, error) {
	var raw struct {
		Version int            `yaml:"version"`
		Options map[string]any `yaml:"options"`
		Values  yaml.Node      `yaml:"values"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, cserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
			Err:        err,
		}
	}

	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, cserrors.ConfigError{Message: "invalid YAML syntax in configuration file", Err: err}
	}
	if err := validateSchema(generic); err != nil {
		return nil, err
	}

	doc := &Document{Version: raw.Version, Options: raw.Options}
	if raw.Values.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(raw.Values.Content); i += 2 {
			key, node := raw.Values.Content[i], raw.Values.Content[i+1]
			var value any
			if err := node.Decode(&value); err != nil {
				return nil, cserrors.ConfigError{
					Field:   "values." + key.Value,
					Message: fmt.Sprintf("invalid value on line %d", node.Line),
					Err:     err,
				}
			}
			doc.Values = append(doc.Values, Entry{Name: key.Value, Value: value})
		}
	}
	return doc, nil
}

func validateSchema(document map[string]any) error {
	if document == nil {
		document = map[string]any{}
	}
	jsonData, err := json.Marshal(document)
	if err != nil {
		return cserrors.ConfigError{
			Message:    "configuration contains values that cannot be represented as JSON",
			Suggestion: "Use string keys in every mapping",
			Err:        err,
		}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var messages []string
		field := ""
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
			if field == "" {
				field = desc.Field()
			}
		}
		return cserrors.ConfigError{
			Field:      field,
			Message:    "schema validation failed:\n  - " + strings.Join(messages, "\n  - "),
			Suggestion: "Check option names and types under 'options:' and value names under 'values:'",
		}
	}
	return nil
}

// Lookup returns the value named name.
func (d *Document) Lookup(name string) (any, bool) {
	for _, e := range d.Values {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Select returns the entries named in names, in the order given. An empty
// names selects every entry.
func (d *Document) Select(names []string) ([]Entry, error) {
	if len(names) == 0 {
		return d.Values, nil
	}
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		value, ok := d.Lookup(name)
		if !ok {
			available := make([]string, 0, len(d.Values))
			for _, e := range d.Values {
				available = append(available, e.Name)
			}
			suggestion := "Add the value to the 'values:' section of your confsecrets.yaml"
			if len(available) > 0 {
				suggestion = fmt.Sprintf("Available values: %s", strings.Join(available, ", "))
			}
			return nil, cserrors.ConfigError{
				Field:      "values",
				Value:      name,
				Message:    "value not found",
				Suggestion: suggestion,
			}
		}
		out = append(out, Entry{Name: name, Value: value})
	}
	return out, nil
}
