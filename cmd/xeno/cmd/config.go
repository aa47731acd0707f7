package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xenoscopic/xeno/internal/config"
	"github.com/xenoscopic/xeno/internal/xio"
)

var configClear bool

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View or edit xeno's configuration",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVarP(&configClear, "clear", "c", false, "clear the given key instead of printing/setting it")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if configClear {
			path, _ := config.FilePath()
			xio.Warning("specifying --clear without a key is refused: it would wipe your whole configuration. Delete %s directly if that's really what you want.", path)
			os.Exit(1)
		}
		return cfg.Write(cmd.OutOrStdout())
	}

	section, option, err := config.SplitKey(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		if configClear {
			cfg.Clear(section, option)
			return cfg.Save()
		}
		value, ok := cfg.Get(section, option)
		if !ok {
			xio.Error("no configuration specified for key %q", args[0])
			os.Exit(1)
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}

	if configClear {
		xio.Warning("a value (%q) was given for key %q along with --clear; specify only one", args[1], args[0])
		os.Exit(1)
	}

	cfg.Set(section, option, args[1])
	return cfg.Save()
}
