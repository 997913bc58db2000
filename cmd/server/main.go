package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/gophsync/internal/config"
	"github.com/iudanet/gophsync/internal/logging"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/server"
	"github.com/iudanet/gophsync/internal/server/jwt"
	"github.com/iudanet/gophsync/internal/server/realtime"
	"github.com/iudanet/gophsync/internal/server/service"
	"github.com/iudanet/gophsync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

var cfgFile string

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "gophsync-server",
		Short:        "Reference sync server for gophsync clients",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	setupFlags(rootCmd)

	rootCmd.AddCommand(
		newServeCmd(),
		newTokenCmd(),
		newUserCmd(),
		newCollaboratorCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	flags.String("database-path", defaults.GetString("database.path"), "SQLite database path")
	flags.String("jwt-secret", "", "Token signing secret (overrides env)")
	flags.Duration("jwt-ttl", defaults.GetDuration("jwt.ttl"), "Access token TTL")
	flags.Int("rate-limit", defaults.GetInt("http.rate_limit"), "Mutation requests per account per window")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "jwt.secret", "jwt-secret")
	bindFlag(cmd, "jwt.ttl", "jwt-ttl")
	bindFlag(cmd, "http.rate_limit", "rate-limit")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// app общие зависимости команд, работающих с базой
type app struct {
	cfg     config.ServerConfig
	logger  *slog.Logger
	db      *sqlite.Storage
	changes *realtime.Dispatcher
	service *service.Service
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadServer(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	changes := realtime.NewDispatcher()
	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		changes: changes,
		service: service.New(db, changes, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database", "error", err)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(server.Dependencies{
		Service:    a.service,
		Store:      a.db,
		Changes:    a.changes,
		Tokens:     jwt.NewService(a.cfg.JWTSecret, a.cfg.JWTTTL),
		Logger:     a.logger,
		Version:    Version,
		RateLimit:  a.cfg.RateLimit,
		RateWindow: a.cfg.RateWindow,
	})
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              a.cfg.HTTPAddress,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// сокеты живут на контексте процесса: Shutdown не закрывает hijacked соединения
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Server started", "address", a.cfg.HTTPAddress, "version", Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <account-id>",
		Short: "Issue an access token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServer(viper.GetViper())
			if err != nil {
				return err
			}
			token, expiresIn, err := jwt.NewService(cfg.JWTSecret, cfg.JWTTTL).GenerateAccessToken(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"access_token": token, "expires_in": expiresIn})
		},
	}
}

func newUserCmd() *cobra.Command {
	var accountID, workspaceID, email, name, role string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Add a user of an account to a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.service.CreateUser(cmd.Context(), accountID, workspaceID, email, name, role)
			if err != nil {
				return err
			}
			return printJSON(cmd, user)
		},
	}
	createCmd.Flags().StringVar(&accountID, "account", "", "Account id")
	createCmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace id")
	createCmd.Flags().StringVar(&email, "email", "", "User email")
	createCmd.Flags().StringVar(&name, "name", "", "User name")
	createCmd.Flags().StringVar(&role, "role", "member", "Workspace role")

	userCmd := &cobra.Command{Use: "user", Short: "Manage workspace users"}
	userCmd.AddCommand(createCmd)
	return userCmd
}

func newCollaboratorCmd() *cobra.Command {
	var actorAccount, workspaceID, rootID, collaboratorID, role string
	var revoke bool

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Grant or revoke a role on a root node",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			actor, err := a.service.ResolveUser(ctx, actorAccount, workspaceID)
			if err != nil {
				return err
			}
			return a.service.SetCollaboration(ctx, actor, rootID, collaboratorID, models.CollaboratorRole(role), !revoke)
		},
	}
	setCmd.Flags().StringVar(&actorAccount, "account", "", "Account of an admin of the root")
	setCmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace id")
	setCmd.Flags().StringVar(&rootID, "root", "", "Root node id")
	setCmd.Flags().StringVar(&collaboratorID, "user", "", "Collaborator user id")
	setCmd.Flags().StringVar(&role, "role", string(models.RoleEditor), "Role (admin, editor, collaborator, viewer)")
	setCmd.Flags().BoolVar(&revoke, "revoke", false, "Revoke access instead of granting it")

	collaboratorCmd := &cobra.Command{Use: "collaborator", Short: "Manage root collaborators"}
	collaboratorCmd.AddCommand(setCmd)
	return collaboratorCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "GophSync Server\n")
			_, _ = fmt.Fprintf(out, "Version:    %s\n", Version)
			_, _ = fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			_, _ = fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
