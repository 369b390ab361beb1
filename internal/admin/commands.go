package admin

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/server/config"
	"github.com/dmitrijs2005/remotetm/internal/server/store"
	"github.com/spf13/cobra"
)

func newMigrateCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withStore(cmd, func(context.Context, *config.Config, *store.Store) error {
				cmd.Println("schema is up to date")
				return nil
			})
		},
	}
}

func newUsersCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withStore(cmd, func(ctx context.Context, _ *config.Config, st *store.Store) error {
				users, err := st.ListUsers(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
				for _, u := range users {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Role.Code(), u.Active)
				}
				return tw.Flush()
			})
		},
	}
}

func newPasswdCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <id>",
		Short: "Set the password of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return o.withStore(cmd, func(ctx context.Context, _ *config.Config, st *store.Store) error {
				u, err := st.GetUser(ctx, id)
				if err != nil {
					return err
				}
				if u == nil {
					return fmt.Errorf("user %q: %w", id, common.ErrorNotFound)
				}

				pw, err := getNewPassword(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if err := st.SetPassword(ctx, id, pw); err != nil {
					return err
				}
				cmd.Printf("password of %s changed\n", id)
				return nil
			})
		},
	}
}

func newSeedCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the administrator account when the database has no users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withStore(cmd, func(ctx context.Context, cfg *config.Config, st *store.Store) error {
				created, err := st.EnsureAdministrator(ctx, cfg.AdminPassword)
				if err != nil {
					return err
				}
				if created {
					cmd.Printf("administrator %s created\n", common.AdministratorID)
				} else {
					cmd.Println("users already exist, nothing to do")
				}
				return nil
			})
		},
	}
}
