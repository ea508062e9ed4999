package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tansive/nanobanana/internal/gateway/digest"
)

type digestViolation struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func newValidateDigestCmd() *cobra.Command {
	var printSchema bool
	cmd := &cobra.Command{
		Use:   "validate-digest <file>",
		Short: "Validate a story digest document",
		Long: `Validate a story digest (JSON or YAML) against the digest schema and report
every violation. Use "-" to read the document from stdin.

Examples:
  # Validate a YAML digest
  nanobanana validate-digest story.yaml

  # Validate from stdin and print the result as JSON
  cat story.json | nanobanana validate-digest - -j

  # Print the digest JSON Schema
  nanobanana validate-digest --schema`,
		Args: func(cmd *cobra.Command, args []string) error {
			if printSchema {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if printSchema {
				fmt.Fprintln(cmd.OutOrStdout(), string(digest.RawSchema()))
				return nil
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return validateDigest(cmd, data)
		},
	}
	cmd.Flags().BoolVar(&printSchema, "schema", false, "Print the digest JSON Schema and exit")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("unable to read digest file: %w", err)
	}
	return data, nil
}

func validateDigest(cmd *cobra.Command, data []byte) error {
	out := cmd.OutOrStdout()
	summary, err := digest.Validate(data)
	if err == nil {
		if jsonOutput {
			printJSON(out, map[string]any{"valid": true, "summary": summary})
			return nil
		}
		okLabel.Fprintln(out, "digest is valid")
		fmt.Fprintf(out, "  source type:     %s\n", summary.SourceType)
		fmt.Fprintf(out, "  confidence:      %s\n", summary.Confidence)
		fmt.Fprintf(out, "  characters:      %d\n", summary.Characters)
		fmt.Fprintf(out, "  locations:       %d\n", summary.Locations)
		fmt.Fprintf(out, "  needs interview: %d\n", summary.NeedsInterview)
		fmt.Fprintf(out, "  ambiguities:     %d\n", summary.Ambiguities)
		return nil
	}

	ves := digest.Violations(err)
	if ves == nil {
		return err
	}
	if jsonOutput {
		vs := make([]digestViolation, 0, len(ves))
		for _, ve := range ves {
			vs = append(vs, digestViolation{Field: ve.Field, Error: ve.ErrStr})
		}
		printJSON(out, map[string]any{"valid": false, "errors": vs})
		return ErrAlreadyHandled
	}
	errorLabel.Fprintf(cmd.ErrOrStderr(), "digest is invalid: %d violation(s)\n", len(ves))
	for _, ve := range ves {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", ve.Field, ve.ErrStr)
	}
	return ErrAlreadyHandled
}
