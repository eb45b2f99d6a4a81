package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/bnema/cheval/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Long: `Print the effective configuration as TOML, after the config file and
CHEVAL_* environment variables have been applied.

Examples:
  cheval config > ~/.config/cheval/config.toml
  cheval config path`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if configPath != "" {
			fmt.Println(configPath)
			return nil
		}
		path, err := config.Discover()
		if err != nil {
			fmt.Printf("none (would read %s)\n", config.DefaultPath())
			return nil
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
}
