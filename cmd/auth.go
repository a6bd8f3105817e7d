package cmd

import (
	"fmt"
	"os"
	"time"

	"cinema-cli/domain"
	"cinema-cli/session"

	"github.com/spf13/cobra"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
	}

	cmd.AddCommand(authRegisterCmd())
	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authGoogleCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authLogoutCmd())
	return cmd
}

func printUser(user domain.User) error {
	fmt.Printf("Logged in as %s <%s> (%s).\n", user.Name, user.Email, user.AuthType)
	return nil
}

func authRegisterCmd() *cobra.Command {
	var email string
	var name string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = promptLine("Email: "); err != nil {
					return err
				}
			}
			if name == "" {
				if name, err = promptLine("Name: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword("Password: "); err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			ctx, cancel := requestContext()
			defer cancel()
			user, err := service.Register(ctx, email, password, name)
			return emit(user, err, printUser)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

func authLoginCmd() *cobra.Command {
	var email string
	var password string
	var authFile string
	authFileDefault := os.Getenv("CINEMA_AUTH_FILE")

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if authFile != "" {
				fileEmail, filePassword, err := readAuthFile(authFile)
				if err != nil {
					return err
				}
				if email == "" {
					email = fileEmail
				}
				if password == "" {
					password = filePassword
				}
			}

			var err error
			if email == "" {
				if email, err = promptLine("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword("Password: "); err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			ctx, cancel := requestContext()
			defer cancel()
			user, err := service.Login(ctx, email, password)
			return emit(user, err, printUser)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&authFile, "auth-file", authFileDefault, "Load credentials from file (default: $CINEMA_AUTH_FILE)")
	return cmd
}

func authGoogleCmd() *cobra.Command {
	var email string
	var name string

	cmd := &cobra.Command{
		Use:   "google",
		Short: "Sign in with a Google account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			ctx, cancel := requestContext()
			defer cancel()
			user, err := service.LoginWithGoogle(ctx, email, name)
			return emit(user, err, printUser)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Google account email")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

type authStatus struct {
	State   string       `json:"state"`
	User    *domain.User `json:"user,omitempty"`
	Expired bool         `json:"token_expired"`
}

func authStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Verify the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := service.Session()
			if _, ok := store.Token(); !ok {
				return emit(authStatus{State: session.StateAnonymous.String()}, nil, func(authStatus) error {
					fmt.Println("Not logged in.")
					return nil
				})
			}
			if store.TokenExpired(time.Now()) {
				status := authStatus{State: session.StateAnonymous.String(), Expired: true}
				return emit(status, nil, func(authStatus) error {
					fmt.Println("Token expired. Run 'cinema auth login' to re-authenticate.")
					return nil
				})
			}

			ctx, cancel := requestContext()
			defer cancel()
			user, err := service.RestoreSession(ctx)
			status := authStatus{State: store.State().String()}
			if err == nil {
				status.User = &user
			}
			return emit(status, err, func(s authStatus) error {
				return printUser(*s.User)
			})
		},
	}

	return cmd
}

func authLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := service.Logout()
			return emit(struct{}{}, err, func(struct{}) error {
				fmt.Println("Logged out.")
				return nil
			})
		},
	}

	return cmd
}
