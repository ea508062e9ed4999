package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/tansive/nanobanana/internal/common/apperrors"
	"github.com/tansive/nanobanana/internal/gateway/versions"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// Global flags
	jsonOutput bool
	configFile string
	logLevel   string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nanobanana [command] [flags]",
	Short: "nanobanana - an MCP server for Gemini image generation",
	Long: `nanobanana exposes Gemini image generation, editing, composition and
multi-turn image chat as Model Context Protocol tools.

Examples:
  # Serve MCP on stdin/stdout for a local agent
  nanobanana serve

  # Serve MCP over HTTP
  nanobanana serve --transport http --listen 127.0.0.1:8628

  # Check a story digest before using it for generation
  nanobanana validate-digest story.yaml

  # Show the effective configuration
  nanobanana config show`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newValidateDigestCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(os.Stdout, map[string]string{"error": errorText(err)})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", errorText(err))
		}
		os.Exit(1)
	}
}

func errorText(err error) string {
	var ae apperrors.Error
	if errors.As(err, &ae) {
		return ae.ErrorAll()
	}
	return err.Error()
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of nanobanana",
		Run: func(cmd *cobra.Command, args []string) {
			path := configFile
			if path == "" {
				var err error
				if path, err = GetDefaultConfigPath(); err != nil {
					path = "unknown"
				}
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{
					"version":     versions.Version,
					"config_file": path,
				})
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", versions.ServerName, versions.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", path)
		},
	}
}

// printJSON prints data as indented JSON to w
func printJSON(w io.Writer, data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(w, string(jsonData))
}
