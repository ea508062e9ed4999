package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tansive/nanobanana/internal/gateway/config"
)

// DefaultConfigFile is the config file name under the user config directory.
const DefaultConfigFile = "config.toml"

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "nanobanana", DefaultConfigFile), nil
}

// LoadConfig reads, expands and validates the configuration, applying
// overrides before validation, and makes it current. A missing file at the
// default location yields the defaults; a missing file named explicitly is
// an error.
func LoadConfig(file string, overrides ...func(*config.ConfigParam)) (*config.ConfigParam, error) {
	explicit := file != ""
	if !explicit {
		var err error
		if file, err = GetDefaultConfigPath(); err != nil {
			return nil, err
		}
	}

	c := config.DefaultConfig()
	content, err := os.ReadFile(file)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("unable to read config file: %w", err)
	default:
		if content, err = ExpandEnv(content); err != nil {
			return nil, err
		}
		if c, err = config.ParseConfig(content); err != nil {
			return nil, err
		}
	}

	if logLevel != "" {
		c.LogLevel = logLevel
	}
	for _, o := range overrides {
		o(c)
	}
	if err := config.ValidateConfig(c); err != nil {
		return nil, err
	}
	config.SetConfig(c)
	return c, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the nanobanana configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Long: `Print the effective configuration: the config file merged over the defaults,
with {{ .ENV.VAR }} placeholders expanded and the API key redacted.

Examples:
  # Show the configuration from the default location
  nanobanana config show

  # Show a specific file in JSON format
  nanobanana config show --config ./nanobanana.toml -j`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := LoadConfig(configFile)
			if err != nil {
				return err
			}
			r := c.Redacted()
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), r)
				return nil
			}
			b, err := r.Encode()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(b))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFile
			if path == "" {
				var err error
				if path, err = GetDefaultConfigPath(); err != nil {
					return err
				}
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{"config_file": path})
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}
