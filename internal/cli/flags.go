package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/assetsync/internal/config"
	"github.com/hupe1980/assetsync/internal/output"
)

// registerGlobalFlags adds the persistent flags shared by every command.
// Their names match the config keys so viper binds them directly.
func registerGlobalFlags(cmd *cobra.Command, cfgFile *string) {
	pf := cmd.PersistentFlags()
	pf.StringVar(cfgFile, "config", "", "config file (default: "+config.FileName+" in the project directory)")
	pf.StringP("project-dir", "C", ".", "Flutter project directory")
	pf.String("log-level", config.LogLevelInfo, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.String("log-file", "", "write logs to a rotating file instead of stderr")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")
}

// registerFormatFlag adds --format with the given default.
func registerFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "format", "table", "output format: table, json, yaml")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return append([]string{"table"}, output.DefaultRegistry().Formats()...), cobra.ShellCompDirectiveNoFileComp
	})
}
