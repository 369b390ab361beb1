package admin

import (
	"context"
	"io"

	"github.com/dmitrijs2005/remotetm/internal/server"
	"github.com/dmitrijs2005/remotetm/internal/server/config"
	"github.com/dmitrijs2005/remotetm/internal/server/store"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	workDir    string
	driver     string
	dsn        string
}

// loadConfig overlays the command-line options on the file/env config.
func (o *options) loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.LoadFile(o.configFile)

	flags := cmd.Flags()
	if flags.Changed("work-dir") {
		cfg.WorkDir = o.workDir
		if cfg.DatabaseDriver == "sqlite" {
			cfg.DatabaseDSN = ""
		}
	}
	if flags.Changed("db-driver") {
		cfg.DatabaseDriver = o.driver
	}
	if flags.Changed("db-dsn") {
		cfg.DatabaseDSN = o.dsn
	}
	cfg.Resolve()
	return cfg
}

// withStore opens the database for the duration of fn.
func (o *options) withStore(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, st *store.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := o.loadConfig(cmd)

	db, st, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, cfg, st)
}

// NewRootCommand builds the remotetm-admin command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "remotetm-admin",
		Short:         "Maintenance tool for the RemoteTM server database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configFile, "config", "c", "", "path to JSON config file")
	pf.StringVarP(&o.workDir, "work-dir", "w", "", "server work directory")
	pf.StringVarP(&o.driver, "db-driver", "d", "", "database driver (sqlite or pgx)")
	pf.StringVar(&o.dsn, "db-dsn", "", "database DSN")

	root.AddCommand(
		newMigrateCommand(o),
		newUsersCommand(o),
		newPasswdCommand(o),
		newSeedCommand(o),
	)
	return root
}
