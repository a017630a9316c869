package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/conftrack/internal/auth"
	"github.com/sakif/conftrack/internal/service"
)

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage password accounts",
	}

	var (
		login    string
		password string
		admin    bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user who logs in with a password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer db.Close()

			// No tokens are issued here, so the service needs no TokenService.
			users := service.NewAuthService(db.Users(), nil, auth.NewPasswordService(), a.logger)
			user, err := users.CreateUser(cmd.Context(), login, password, admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", user.Role(), user.Login, user.ID)
			return nil
		},
	}
	add.Flags().StringVar(&login, "login", "", "login name (required)")
	add.Flags().StringVar(&password, "password", "", "password, at least 8 characters (required)")
	add.Flags().BoolVar(&admin, "admin", false, "grant administrator privileges")
	_ = add.MarkFlagRequired("login")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)
	return cmd
}
