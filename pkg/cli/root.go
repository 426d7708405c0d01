package cli

import (
	"context"

	workhours "github.com/TechXTT/workhours"
	"github.com/TechXTT/workhours/pkg/config"
	"github.com/TechXTT/workhours/pkg/hours"
	"github.com/TechXTT/workhours/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func version() string {
	return "v1.0.0"
}

const long = `workhours records employee working time and computes totals and salaries.

Configuration is read from WORKHOURS_* environment variables (and a .env file),
e.g. WORKHOURS_DATABASE__DRIVER=postgres WORKHOURS_DATABASE__DSN=postgres://...`

// app carries state shared by subcommands once flags are parsed.
type app struct {
	prefix  string
	scope   string
	verbose int

	cfg *config.Config
	log zerolog.Logger
}

// load reads configuration and sets up logging.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.prefix)
	if err != nil {
		return err
	}
	if a.scope != "" {
		if _, err := hours.ParseScope(a.scope); err != nil {
			return err
		}
		cfg.Manager.Scope = a.scope
	}
	switch {
	case a.verbose >= 2:
		cfg.Log.Level = "trace"
	case a.verbose == 1:
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg
	a.log = logging.Apply(cfg.Log, cmd.ErrOrStderr())
	return nil
}

func (a *app) open(ctx context.Context) (*workhours.DB, error) {
	return workhours.Open(ctx, a.cfg, a.log)
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version())
		},
	}
}

// NewRootCmd builds the top-level `workhours` command.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "workhours",
		Short:         "Track employee working hours",
		Long:          long,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.prefix, "env-prefix", config.DefaultPrefix, "Environment variable prefix")
	root.PersistentFlags().StringVar(&a.scope, "scope", "", "Connection scope: eager or lazy (overrides config)")
	root.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	root.AddCommand(newLogCmd(a))
	root.AddCommand(newTotalCmd(a))
	root.AddCommand(newSalaryCmd(a))
	root.AddCommand(newRateCmd(a))
	root.AddCommand(NewMigrateCmd(a))
	root.AddCommand(NewVersionCmd())
	return root
}
