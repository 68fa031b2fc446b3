// Package main is the voicestyle command: it serves the voice profile over MCP stdio
// and HTTP, and prints the loaded profile.
// file: cmd/voicestyle/main.go
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/config"
	"github.com/dkoosis/voicestyle/internal/voice"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version information, set during build via ldflags.
var (
	Version    = "1.0.0"
	commitHash = "unknown"
	buildDate  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "voicestyle: %+v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "voicestyle",
		Short:         "Serve a writing voice, style and tone profile to MCP clients.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newProfileCmd(), newVersionCmd())
	return root
}

func newProfileCmd() *cobra.Command {
	var configPath, format string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the loaded voice profile.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			store, err := voice.Open(cfg.Profile.Path)
			if err != nil {
				return err
			}
			return writeProfile(cmd, store.Get(), format)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file.")
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json or yaml).")
	return cmd
}

func writeProfile(cmd *cobra.Command, p voice.Profile, format string) error {
	var out []byte
	var err error
	switch format {
	case "json":
		out, err = p.MarshalDocument()
	case "yaml":
		out, err = yaml.Marshal(p)
	default:
		return errors.Newf("unknown format %q: must be json or yaml", format)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "voicestyle %s (commit %s, built %s)\n", Version, commitHash, buildDate)
		},
	}
}

// loadConfig reads path if given, otherwise defaults plus environment overrides.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadFromFile(path)
}
