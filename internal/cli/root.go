package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"healthbridge/internal/config"
	"healthbridge/internal/server"
	"healthbridge/internal/triage"
)

// Version is set at build time with -ldflags "-X healthbridge/internal/cli.Version=...".
var Version = "dev"

type app struct {
	cfgFile     string
	catalogPath string
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the healthbridge command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "healthbridge",
		Short: "HealthBridge - rule-based symptom triage",
		Long: `HealthBridge turns self-reported symptoms into possible conditions,
an urgency level and care recommendations.

It is a triage aid, not a diagnosis.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&a.catalogPath, "catalog", "", "condition catalog file (default: embedded catalog)")

	root.AddCommand(
		a.serveCmd(),
		a.assessCmd(),
		a.chatCmd(),
		a.symptomsCmd(),
		a.catalogCmd(),
		a.watchCmd(),
		a.configCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "healthbridge %s\n", Version)
		},
	}
}

func (a *app) loadConfig() (*config.Config, error) {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if a.catalogPath != "" {
		cfg.Catalog.Path = a.catalogPath
	}
	return cfg, nil
}

func (a *app) engine() (*triage.Engine, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := server.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	return triage.NewEngine(catalog), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
