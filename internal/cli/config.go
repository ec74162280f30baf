package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented sample config",
	Long: `Write the sample configuration to ~/.config/altyazi/config.toml, or to
the given path. Existing files are never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		written, err := config.WriteSample(path)
		if err != nil {
			return err
		}
		fmt.Printf("Config written: %s\n", written)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.Encode()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
