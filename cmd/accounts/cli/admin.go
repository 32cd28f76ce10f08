package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"user-accounts/internal/auth"
	"user-accounts/internal/config"
	"user-accounts/internal/service"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
		Long:  "Create administrators and grant or revoke the admin flag. The HTTP API never changes this flag.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminGrantCmd(true))
	cmd.AddCommand(newAdminGrantCmd(false))

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new administrator",
		Example: `  accounts admin create --username root --password secret
  accounts admin create --username root  # prompts for password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := promptPassword(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = pw
			}
			return withUsers(cmd.Context(), func(ctx context.Context, users service.UserService) error {
				return runAdminCreate(ctx, cmd.OutOrStdout(), users, username, password)
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Administrator username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Administrator password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runAdminCreate(ctx context.Context, out io.Writer, users service.UserService, username, password string) error {
	admin, err := users.RegisterAdmin(ctx, username, password)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			return fmt.Errorf("username and password are required")
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(out, "Created admin user %q (id %d)\n", admin.Username, admin.ID)
	return nil
}

func promptPassword(prompt io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}

	fmt.Fprint(prompt, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(prompt, "Confirm password: ")
	confirm, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(pw) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pw), nil
}

// ---------- admin grant / revoke ----------

func newAdminGrantCmd(grant bool) *cobra.Command {
	use, short := "revoke <id>", "Remove the admin flag from a user"
	if grant {
		use, short = "grant <id>", "Give a user the admin flag"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := auth.ParseID(args[0])
			if !ok {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			return withUsers(cmd.Context(), func(ctx context.Context, users service.UserService) error {
				return runAdminSet(ctx, cmd.OutOrStdout(), users, id, grant)
			})
		},
	}
}

func runAdminSet(ctx context.Context, out io.Writer, users service.UserService, id int64, isAdmin bool) error {
	user, err := users.SetAdmin(ctx, id, isAdmin)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return fmt.Errorf("no user with id %d", id)
		}
		return fmt.Errorf("update user %d: %w", id, err)
	}

	fmt.Fprintf(out, "User %q (id %d) isadmin=%t\n", user.Username, user.ID, user.IsAdmin)
	fmt.Fprintln(out, "Tokens issued before this change keep their old privilege until the user logs in again.")
	return nil
}

// withUsers loads configuration, opens the store for the duration of fn and
// closes it afterwards.
func withUsers(ctx context.Context, fn func(context.Context, service.UserService) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, users, err := openUsers(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, users)
}
