package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cserrors "github.com/systmms/confsecrets/internal/errors"
	"github.com/systmms/confsecrets/internal/logging"
	"github.com/systmms/confsecrets/internal/transform"
)

const redacted = "[REDACTED]"

// resolved is one resolved configuration value ready for output.
type resolved struct {
	name  string
	value any
}

// NewResolveCommand creates the resolve command
func NewResolveCommand(rt *Runtime) *cobra.Command {
	var (
		reveal bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "resolve [NAME...]",
		Short: "Resolve configuration values",
		Long: `Resolve the values of the configuration file, or only the named ones.

Literal values are printed as written. References (ENV, KEYCHAIN, 1PASSWORD,
ASK) are resolved and printed as [REDACTED] unless --reveal is given.
Nothing is printed when any value fails to resolve.`,
		Example: `  confsecrets resolve
  confsecrets resolve DATABASE_URL API_KEY --reveal
  confsecrets resolve --format json --reveal`,
		ValidArgsFunction: completeValueNames(rt),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "env", "json", "yaml":
			default:
				return cserrors.UserError{
					Message:    fmt.Sprintf("Unsupported output format: %s", format),
					Suggestion: "Use one of: env, json, yaml",
				}
			}

			cfg := rt.Config
			if err := cfg.Load(); err != nil {
				return err
			}

			entries, err := cfg.Document.Select(args)
			if err != nil {
				return err
			}

			t := rt.transformer()
			defer t.Close()

			opts := transform.Options(cfg.Document.Options)
			results := make([]resolved, 0, len(entries))
			var secrets []string
			for _, entry := range entries {
				variant := transform.Classify(entry.Value)
				value, err := t.Transform(cmd.Context(), entry.Value, opts)
				if err != nil {
					wrapped := cserrors.ProviderError(providerName(variant), "resolution of "+entry.Name, err)
					cfg.Logger.Debug("%s", logging.Redact(err.Error(), secrets))
					return wrapped
				}

				if _, raw := variant.(transform.Raw); !raw && value != nil {
					if s, ok := value.(string); ok {
						secrets = append(secrets, s)
					}
					if !reveal {
						value = redacted
					}
				}
				if value == nil {
					cfg.Logger.Debug("%s is undefined", entry.Name)
				}
				results = append(results, resolved{name: entry.Name, value: value})
			}

			cfg.Logger.Debug("Resolved %d values", len(results))
			return writeResolved(cmd.OutOrStdout(), format, results)
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print resolved secret values instead of [REDACTED]")
	cmd.Flags().StringVar(&format, "format", "env", "Output format (env, json, yaml)")

	return cmd
}

func providerName(v transform.Variant) string {
	if v.Tag() == "" {
		return "config"
	}
	return strings.ToLower(v.Tag())
}

func writeResolved(w io.Writer, format string, results []resolved) error {
	switch format {
	case "json":
		return writeJSON(w, results)
	case "yaml":
		return writeYAML(w, results)
	default:
		return writeEnv(w, results)
	}
}

// writeEnv prints NAME=value lines. Undefined values are omitted.
func writeEnv(w io.Writer, results []resolved) error {
	for _, r := range results {
		if r.value == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s=%s\n", r.name, scalarString(r.value)); err != nil {
			return err
		}
	}
	return nil
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case map[string]any, []any:
		data, err := json.Marshal(s)
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}

// writeJSON prints a single object keeping the document order of values.
func writeJSON(w io.Writer, results []resolved) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range results {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.name)
		if err != nil {
			return err
		}
		value, err := json.Marshal(r.value)
		if err != nil {
			return fmt.Errorf("failed to encode %s as JSON: %w", r.name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

func writeYAML(w io.Writer, results []resolved) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, r := range results {
		var value yaml.Node
		if err := value.Encode(r.value); err != nil {
			return fmt.Errorf("failed to encode %s as YAML: %w", r.name, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.name},
			&value,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
