package auth

import (
	"fmt"

	"github.com/inkwell/inkwell/cmd/cli/client"
	"github.com/inkwell/inkwell/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers auth-related CLI commands on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
}

// loginCmd logs a user in and stores the session token locally.
func loginCmd() *cobra.Command {
	var username string
	var password string
	var email string
	var register bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Inkwell API",
		Long:  "Authenticate with the Inkwell API and store the session token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			// Optionally register the user first
			if register {
				if email == "" {
					return fmt.Errorf("--email is required with --register")
				}
				payload := map[string]string{"username": username, "email": email, "password": password}
				if err := client.DoJSON("POST", "/api/auth/register", payload, nil); err != nil {
					return fmt.Errorf("failed to register user: %w", err)
				}
			}

			token, err := client.Login(username, password)
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}

			if err := config.SaveToken(token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&email, "email", "", "Email address (used with --register)")
	cmd.Flags().BoolVar(&register, "register", false, "Register the user before logging in")

	return cmd
}

// logoutCmd discards the stored token. The server holds no session state,
// so this is purely local.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearToken(); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}
