package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// set with -ldflags "-X .../internal/cli.version=v1.2.3"
var version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(versionString())
	},
}

func versionString() string {
	v := version
	goVersion := ""
	if info, ok := debug.ReadBuildInfo(); ok {
		if v == "" {
			v = info.Main.Version
		}
		goVersion = info.GoVersion
	}
	if v == "" || v == "(devel)" {
		v = "dev"
	}
	if goVersion == "" {
		return "altyazi " + v
	}
	return fmt.Sprintf("altyazi %s (%s)", v, goVersion)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
