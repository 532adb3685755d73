package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

const (
	configFileMode = 0o600
	configDirMode  = 0o700
)

type configSchema struct {
	Gateway gatewayConfigSchema `toml:"gateway"`
	Poll    pollConfigSchema    `toml:"poll"`
	Cache   cacheConfigSchema   `toml:"cache"`
}

type gatewayConfigSchema struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

type pollConfigSchema struct {
	Interval string `toml:"interval"`
}

type cacheConfigSchema struct {
	Path string `toml:"path"`
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage deck configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home directory: %w", err)
			}

			path := filepath.Join(homeDir, configDirName, configFileName+"."+configFileType)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}

			if err := writeConfigFile(path, defaultConfigSchema(homeDir)); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func defaultConfigSchema(homeDir string) configSchema {
	return configSchema{
		Gateway: gatewayConfigSchema{
			URL:     defaultGatewayURL,
			Timeout: defaultGatewayTimeout.String(),
		},
		Poll: pollConfigSchema{
			Interval: "2s",
		},
		Cache: cacheConfigSchema{
			Path: filepath.Join(homeDir, configDirName, "cache.db"),
		},
	}
}

func writeConfigFile(path string, schema configSchema) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}
