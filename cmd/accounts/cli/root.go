package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"user-accounts/internal/auth"
	"user-accounts/internal/config"
	"user-accounts/internal/repository/sqldb"
	"user-accounts/internal/service"
)

var (
	cfgFile    string
	appVersion string
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	return newRootCmd(version, commit, date).Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "User accounts REST API",
		Long: `accounts serves a small REST API for registering users, logging in with a
signed token and managing accounts, with an admin role allowed to manage everyone.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./accounts.{yaml,json,toml} if present)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newOpenAPICmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

// newLogger builds the process logger from the log section of cfg.
func newLogger(cfg config.Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if strings.EqualFold(cfg.Log.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// openUsers connects to the store, makes sure the schema exists and returns a
// user service over it. The caller closes the returned db.
func openUsers(ctx context.Context, cfg config.Config) (*sqlx.DB, service.UserService, error) {
	db, err := sqldb.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	repo := sqldb.NewUserRepository(db)
	if err := repo.Init(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("init user repository: %w", err)
	}

	return db, service.NewUserService(repo, auth.NewHasher(cfg.Auth.BcryptCost)), nil
}
