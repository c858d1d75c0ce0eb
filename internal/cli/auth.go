package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-taskboard/internal/client"
)

func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			var input client.RegisterInput
			input.FullName, _ = cmd.Flags().GetString("name")
			input.Email, _ = cmd.Flags().GetString("email")
			input.Password, _ = cmd.Flags().GetString("password")

			if err = app.Session.Register(cmd.Context(), input); err != nil {
				return fmt.Errorf("registration failed: %s", app.Session.State().Err)
			}

			user := app.Session.State().User
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().String("name", "", "Full name (required)")
	cmd.Flags().String("email", "", "Email (required)")
	cmd.Flags().String("password", "", "Password, at least 6 characters (required)")
	markRequired(cmd, "name", "email", "password")
	return cmd
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			if err = app.Session.Login(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("login failed: %s", app.Session.State().Err)
			}

			user := app.Session.State().User
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().String("email", "", "Email (required)")
	cmd.Flags().String("password", "", "Password (required)")
	markRequired(cmd, "email", "password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if err = app.Session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := authenticatedApp(cmd)
			if err != nil {
				return err
			}

			user := app.Session.State().User
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.FullName, user.Email)
			return nil
		},
	}
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
