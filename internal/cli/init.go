package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/coopcredit/devstack/internal/config"
	"github.com/spf13/cobra"
)

var initUser bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default devstack configuration",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initUser, "user", false, "Write ~/.devstack/config.yaml instead of the project config")
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if initUser {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home dir: %w", err)
		}
		root = home
	}

	configDir := filepath.Join(root, config.Dir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Config already exists: %s\n", configPath)
		return nil
	}

	if err := os.WriteFile(configPath, []byte(config.DefaultYAML), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
	return nil
}
