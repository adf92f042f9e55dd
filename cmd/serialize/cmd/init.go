/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/LeDuy-Vu/serialize-this/pkg/config"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file",
		Long: `Create a configuration file with a generated API key, an example
"header" format and default storage settings.

Examples:
  serialize init
  serialize init --config ./serialize.yaml --data-dir ./data --print-key`,
		Args: cobra.NoArgs,
		// The config file may not exist yet, so skip the root loader
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.resolveConfigPath()
			return a.initLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			force, _ := cmd.Flags().GetBool("force")
			printKey, _ := cmd.Flags().GetBool("print-key")

			if config.ConfigExists(a.configPath) && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", a.configPath)
			}

			cfg, err := config.BootstrapConfig(a.configPath, dataDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration created at %s\n", a.configPath)
			fmt.Fprintf(out, "Data directory: %s\n", cfg.Storage.Path)
			if printKey {
				fmt.Fprintf(out, "API key: %s\n", cfg.Server.APIKey)
			}
			return nil
		},
	}

	initCmd.Flags().StringP("data-dir", "d", "./data", "Directory for the packet archive")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
	return initCmd
}
