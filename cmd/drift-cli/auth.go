package main

import (
	"github.com/spf13/cobra"

	"github.com/driftstream/driftstream-cli/internal/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Commands for logging in and out of the DriftStream backend and inspecting the current session.`,
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the backend",
	Long:  `Authenticate against the backend and store the session token in the system keyring.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return auth.Login(cmd.Context(), getServices().Auth, args)
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	Long:  `Clear the stored session token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return auth.Logout()
	},
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	Long:  `Display the logged-in user, the backend address and the token expiry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return auth.Status()
	},
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}
