package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	cserrors "github.com/systmms/confsecrets/internal/errors"
	"github.com/systmms/confsecrets/internal/providers/onepassword"
	"github.com/systmms/confsecrets/internal/transform"
)

// Check statuses
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// CheckResult is the outcome of one doctor check
type CheckResult struct {
	Name        string
	Status      string
	Message     string
	Suggestions []string
}

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(rt *Runtime) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment values are resolved in",
		Long: `Check the configuration file, the 1Password CLI, the OS keychain and the
1Password session seed.

A missing backend is only an error when the configuration references it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.Config
			ctx := cmd.Context()

			var results []CheckResult
			usage := map[string]int{}

			configCheck := CheckResult{Name: "config", Status: statusOK}
			opts := transform.Options{}
			if _, err := os.Stat(cfg.Path); os.IsNotExist(err) {
				configCheck.Status = statusWarning
				configCheck.Message = fmt.Sprintf("%s not found", cfg.Path)
				configCheck.Suggestions = []string{"Create the file or pass --config"}
			} else if err := cfg.Load(); err != nil {
				configCheck.Status = statusError
				configCheck.Message = err.Error()
			} else {
				opts = transform.Options(cfg.Document.Options)
				for _, entry := range cfg.Document.Values {
					usage[providerName(transform.Classify(entry.Value))]++
				}
				configCheck.Message = fmt.Sprintf("%d values (%s)", len(cfg.Document.Values), describeUsage(usage))
			}
			results = append(results, configCheck)

			opCfg := rt.onePasswordConfig(opts, "")
			opCheck := CheckResult{Name: "1password cli", Status: statusOK}
			if path, err := rt.lookPath()(opCfg.Command); err != nil {
				opCheck.Status = severity(usage["1password"])
				opCheck.Message = fmt.Sprintf("%s not found in PATH", opCfg.Command)
				opCheck.Suggestions = suggestionsFor(cserrors.WrapCommandNotFound(opCfg.Command, err))
			} else {
				opCheck.Message = path
			}
			results = append(results, opCheck)

			sessionVar := onepassword.SessionEnvVar(opCfg.Account)
			sessionCheck := CheckResult{Name: "1password session", Status: statusOK}
			if token, ok := rt.lookupEnv()(sessionVar); ok && token != "" {
				sessionCheck.Message = fmt.Sprintf("%s is set", sessionVar)
			} else {
				sessionCheck.Status = statusWarning
				sessionCheck.Message = fmt.Sprintf("%s is not set", sessionVar)
				if opCfg.AllowSignin {
					sessionCheck.Suggestions = []string{"A signin prompt will be shown on first use"}
				} else {
					sessionCheck.Suggestions = []string{"Run: eval \"$(confsecrets signin)\""}
				}
			}
			results = append(results, sessionCheck)

			kc := rt.keychain()
			keychainCheck := CheckResult{Name: "keychain", Status: statusOK}
			if err := kc.Validate(ctx); err != nil {
				keychainCheck.Status = severity(usage["keychain"])
				keychainCheck.Message = err.Error()
				keychainCheck.Suggestions = suggestionsFor(cserrors.ProviderError("keychain", "validation", err))
			} else {
				keychainCheck.Message = fmt.Sprintf("%s keychain is available", kc.Platform())
			}
			results = append(results, keychainCheck)

			displayCheckResults(cmd.OutOrStdout(), results, verbose)

			failed := 0
			for _, r := range results {
				if r.Status == statusError {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			cfg.Logger.Info("All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show suggestions for failed checks")

	return cmd
}

// severity is an error when the configuration uses the backend.
func severity(references int) string {
	if references > 0 {
		return statusError
	}
	return statusWarning
}

func describeUsage(usage map[string]int) string {
	if len(usage) == 0 {
		return "none"
	}
	names := make([]string, 0, len(usage))
	for name := range usage {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, usage[name]))
	}
	return strings.Join(parts, ", ")
}

func suggestionsFor(err error) []string {
	var userErr cserrors.UserError
	if errors.As(err, &userErr) && userErr.Suggestion != "" {
		return []string{userErr.Suggestion}
	}
	var cmdErr cserrors.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Suggestion != "" {
		return []string{cmdErr.Suggestion}
	}
	return nil
}

// displayCheckResults shows check results in a formatted table
func displayCheckResults(w io.Writer, results []CheckResult, verbose bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(tw, "CHECK\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(tw, "-----\t------\t-------\n")

	for _, result := range results {
		status := result.Status
		switch result.Status {
		case statusOK:
			status = "✓ " + status
		case statusError:
			status = "✗ " + status
		default:
			status = "⚠ " + status
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", result.Name, status, result.Message)
	}
	_ = tw.Flush()

	if !verbose {
		return
	}
	for _, result := range results {
		if result.Status == statusOK || len(result.Suggestions) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n%s suggestions:\n", result.Name)
		for _, suggestion := range result.Suggestions {
			_, _ = fmt.Fprintf(w, "  • %s\n", suggestion)
		}
	}
}
