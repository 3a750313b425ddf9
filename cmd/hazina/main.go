package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/martiendejong/Hazina-sub003/internal/config"
	"github.com/martiendejong/Hazina-sub003/internal/logging"
)

var version = "0.1.0"

// Color helpers for terminal output.
var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

type cliState struct {
	configPath string
	verbose    bool
	cfg        config.Config
	logger     logging.Logger
}

// loadConfig resolves configuration once per invocation.
func (s *cliState) loadConfig() error {
	path := s.configPath
	if path == "" {
		if v := viper.ConfigFileUsed(); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if s.verbose {
		cfg.LogLevel = "debug"
	}
	s.cfg = cfg
	s.logger = logging.NewComponentLoggerAt("hazina", logging.ParseLevel(cfg.LogLevel))
	return nil
}

func newRootCommand() *cobra.Command {
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:   "hazina",
		Short: "Confidence-gated reasoning over tiered LLM backends",
		Long: `Hazina runs prompts through an escalation chain of reasoning layers.
Cheap layers answer first; low-confidence or invalid answers escalate
to deeper layers, and disagreements resolve by consensus.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&state.configPath, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(newReasonCommand(state))
	rootCmd.AddCommand(newServeCommand(state))
	rootCmd.AddCommand(newVersionCommand())

	viper.SetConfigName("hazina")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.hazina")
	viper.AddConfigPath(".")
	// Missing config files fall back to defaults; only flags make a
	// named file mandatory.
	_ = viper.ReadInConfig()

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hazina %s\n", version)
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("error: ")+err.Error())
		os.Exit(1)
	}
}
