package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errNoCloud = errors.New("cloud account is not configured, set SUPABASE_URL and SUPABASE_KEY")

func (c *cli) requireRemote() error {
	if c.app.Remote == nil {
		return errNoCloud
	}
	return nil
}

func credentialFlags(cmd *cobra.Command, email, password *string) {
	cmd.Flags().StringVarP(email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the cloud account; leaves demo mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireRemote(); err != nil {
				return err
			}
			if err := c.app.Account.SignIn(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", strings.TrimSpace(email))
			return c.printMode(cmd)
		},
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func (c *cli) signupCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a cloud account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireRemote(); err != nil {
				return err
			}
			if err := c.app.Account.SignUp(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s\n", strings.TrimSpace(email))
			return nil
		},
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and leave demo mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Account.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return c.printMode(cmd)
		},
	}
}

func (c *cli) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile [display name]",
		Short: "Show or set the cloud profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireRemote(); err != nil {
				return err
			}
			profile, err := c.app.Account.Profile(cmd.Context())
			if name := strings.Join(args, " "); name != "" {
				profile, err = c.app.Account.SaveProfile(cmd.Context(), name)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user: %s\nname: %s\n", profile.UserID, profile.DisplayName)
			return nil
		},
	}
}
