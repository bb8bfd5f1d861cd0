package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/client/client"
	"github.com/dmitrijs2005/recipekeeper/internal/client/services"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/spf13/cobra"
)

type registerFlags struct {
	userName string
	email    string
}

func newRegisterCmd(g *globalFlags) *cobra.Command {
	f := &registerFlags{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long: `Create a new account on the server. Missing user name and email are
prompted for; the password is always read from the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				return runRegister(ctx, cmd, e, f)
			})
		},
	}

	cmd.Flags().StringVar(&f.userName, "user", "", "user name")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")

	return cmd
}

func runRegister(ctx context.Context, cmd *cobra.Command, e *env, f *registerFlags) error {
	w := cmd.OutOrStdout()

	userName, err := orPrompt(e, f.userName, "User name", cmd)
	if err != nil {
		return err
	}
	email, err := orPrompt(e, f.email, "Email", cmd)
	if err != nil {
		return err
	}

	pw, err := GetPassword("Password", w)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword("Confirm password", w)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := e.auth.Register(ctx, userName, email, pw, confirm); err != nil {
		return describe(err)
	}

	cmd.Printf("User %s registered. Run 'recipectl login' to sign in.\n", userName)
	return nil
}

func newLoginCmd(g *globalFlags) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				addr, err := orPrompt(e, email, "Email", cmd)
				if err != nil {
					return err
				}
				pw, err := GetPassword("Password", cmd.OutOrStdout())
				if err != nil {
					return err
				}
				defer common.WipeByteArray(pw)

				s, err := e.auth.Login(ctx, addr, pw)
				if err != nil {
					return describe(err)
				}
				cmd.Printf("Logged in as %s. Session valid until %s.\n",
					s.UserName, s.Expiration.Local().Format(time.RFC1123))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")

	return cmd
}

func newLogoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				if err := e.auth.Logout(ctx); err != nil {
					return err
				}
				cmd.Println("Logged out.")
				return nil
			})
		},
	}
}

func newWhoamiCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				s, err := e.auth.Session(ctx)
				if err != nil {
					return describe(err)
				}
				cmd.Printf("%s <%s> on %s\n", s.UserName, s.Email, e.cfg.ServerURL)
				if len(s.Roles) > 0 {
					cmd.Printf("Roles: %v\n", s.Roles)
				}
				cmd.Printf("Session valid until %s.\n", s.Expiration.Local().Format(time.RFC1123))
				return nil
			})
		},
	}
}

func orPrompt(e *env, value, prompt string, cmd *cobra.Command) (string, error) {
	if value != "" {
		return value, nil
	}
	return GetSimpleText(e.in, prompt, cmd.OutOrStdout())
}

// describe turns client errors into messages fit for the terminal.
func describe(err error) error {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return errors.New("not logged in: run 'recipectl login' first")
	case errors.Is(err, client.ErrUnavailable):
		return fmt.Errorf("server is unavailable: %w", err)
	case errors.As(err, &apiErr):
		return apiErr
	default:
		return err
	}
}
