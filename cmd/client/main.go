package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/gophsync/internal/client/account"
	"github.com/iudanet/gophsync/internal/client/cli"
	"github.com/iudanet/gophsync/internal/client/eventbus"
	"github.com/iudanet/gophsync/internal/client/iocli"
	"github.com/iudanet/gophsync/internal/client/mutation"
	"github.com/iudanet/gophsync/internal/client/node"
	"github.com/iudanet/gophsync/internal/client/storage/boltdb"
	"github.com/iudanet/gophsync/internal/client/workspace"
	"github.com/iudanet/gophsync/internal/config"
	"github.com/iudanet/gophsync/internal/logging"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var cfgFile string

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "gophsync",
		Short:        "Local-first sync client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	setupFlags(rootCmd)

	rootCmd.AddCommand(
		newRunCmd(),
		newStatusCmd(),
		newNodeCmd(),
		newReactCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.String("server", defaults.GetString("server.url"), "Server URL")
	flags.String("account", "", "Account id")
	flags.String("token", "", "Account access token")
	flags.String("workspace", "", "Workspace id")
	flags.String("user", "", "User id of the account in the workspace")
	flags.String("data-dir", defaults.GetString("storage.dir"), "Directory of local replicas")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "server.url", "server")
	bindFlag(cmd, "account.id", "account")
	bindFlag(cmd, "account.token", "token")
	bindFlag(cmd, "workspace.id", "workspace")
	bindFlag(cmd, "workspace.user_id", "user")
	bindFlag(cmd, "storage.dir", "data-dir")
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

// replica открытая локальная реплика workspace
type replica struct {
	cfg    config.ClientConfig
	logger *slog.Logger
	store  *boltdb.Storage
	bus    *eventbus.Bus
}

func openReplica(ctx context.Context) (*replica, error) {
	cfg, err := config.LoadClient(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.StorageDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	store, err := boltdb.New(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open local replica (is the client already running?): %w", err)
	}

	return &replica{
		cfg:    cfg,
		logger: logger,
		store:  store,
		bus:    eventbus.New(logger),
	}, nil
}

func (r *replica) Close() {
	r.bus.Close()
	if err := r.store.Close(); err != nil {
		r.logger.Error("Failed to close local replica", "error", err)
	}
}

// offlineCli команды, меняющие реплику без соединения с сервером.
// Мутации уйдут на сервер при следующем запуске run.
func (r *replica) offlineCli() *cli.Cli {
	nodes := node.NewService(node.Config{
		WorkspaceID: r.cfg.WorkspaceID,
		UserID:      r.cfg.UserID,
	}, r.store, r.bus, r.logger)

	return cli.New(iocli.NewStdio(), nodes, func(ctx context.Context) (*workspace.Status, error) {
		return workspace.ReadStatus(ctx, r.cfg.WorkspaceID, r.store)
	})
}

// withReplica открывает реплику на время выполнения команды
func withReplica(fn func(ctx context.Context, r *replica) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r, err := openReplica(cmd.Context())
		if err != nil {
			return err
		}
		defer r.Close()
		return fn(cmd.Context(), r)
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Synchronize the workspace until interrupted",
		RunE: withReplica(func(ctx context.Context, r *replica) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			acc := account.New(account.Config{
				AccountID:      r.cfg.AccountID,
				ServerURL:      r.cfg.ServerURL,
				SocketURL:      r.cfg.SocketURL,
				Token:          r.cfg.Token,
				HealthInterval: r.cfg.HealthInterval,
				BackoffBase:    r.cfg.BackoffBase,
				BackoffMax:     r.cfg.BackoffMax,
			}, r.bus, r.logger)
			acc.Start()

			_, err := acc.AddWorkspace(ctx, workspace.Config{
				WorkspaceID: r.cfg.WorkspaceID,
				UserID:      r.cfg.UserID,
				Queue: mutation.Config{
					ReadSize:   r.cfg.ReadSize,
					BatchSize:  r.cfg.BatchSize,
					MaxRetries: r.cfg.MaxRetries,
					Interval:   r.cfg.SyncInterval,
				},
			}, r.store)
			if err != nil {
				return fmt.Errorf("failed to start workspace: %w", err)
			}

			r.logger.Info("Client started",
				"workspace_id", r.cfg.WorkspaceID,
				"server", r.cfg.ServerURL,
				"version", Version)

			<-ctx.Done()
			r.logger.Info("Shutting down client")
			// ctx уже отменен, остановке нужен свой контекст
			return acc.Stop(context.WithoutCancel(ctx))
		}),
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show local sync state of the workspace",
		RunE: withReplica(func(ctx context.Context, r *replica) error {
			return r.offlineCli().RunStatus(ctx)
		}),
	}
}

func newNodeCmd() *cobra.Command {
	nodeCmd := &cobra.Command{Use: "node", Short: "Manage nodes of the local replica"}

	var opts cli.CreateOptions
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a node",
		Args:  cobra.NoArgs,
		RunE: withReplica(func(ctx context.Context, r *replica) error {
			return r.offlineCli().RunCreate(ctx, opts)
		}),
	}
	createCmd.Flags().StringVar(&opts.Type, "type", "", "Node type (space, channel, chat, page, message)")
	createCmd.Flags().StringVar(&opts.ParentID, "parent", "", "Parent node id")
	createCmd.Flags().StringVar(&opts.Attributes, "attributes", "", "Node attributes as a JSON object")
	_ = createCmd.MarkFlagRequired("type")

	getCmd := &cobra.Command{
		Use:   "get <node-id>",
		Short: "Show a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReplica(func(ctx context.Context, r *replica) error {
				return r.offlineCli().RunGet(ctx, args[0])
			})(cmd, args)
		},
	}

	var attributes string
	updateCmd := &cobra.Command{
		Use:   "update <node-id>",
		Short: "Replace node attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReplica(func(ctx context.Context, r *replica) error {
				return r.offlineCli().RunUpdate(ctx, args[0], attributes)
			})(cmd, args)
		},
	}
	updateCmd.Flags().StringVar(&attributes, "attributes", "", "Node attributes as a JSON object")
	_ = updateCmd.MarkFlagRequired("attributes")

	var force bool
	deleteCmd := &cobra.Command{
		Use:   "delete <node-id>",
		Short: "Delete a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReplica(func(ctx context.Context, r *replica) error {
				return r.offlineCli().RunDelete(ctx, args[0], force)
			})(cmd, args)
		},
	}
	deleteCmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")

	nodeCmd.AddCommand(createCmd, getCmd, updateCmd, deleteCmd)
	return nodeCmd
}

func newReactCmd() *cobra.Command {
	var remove bool
	reactCmd := &cobra.Command{
		Use:   "react <node-id> <reaction>",
		Short: "Add or remove a reaction on a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReplica(func(ctx context.Context, r *replica) error {
				return r.offlineCli().RunReact(ctx, args[0], args[1], remove)
			})(cmd, args)
		},
	}
	reactCmd.Flags().BoolVar(&remove, "remove", false, "Remove the reaction")
	return reactCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "GophSync Client\n")
			_, _ = fmt.Fprintf(out, "Version:    %s\n", Version)
			_, _ = fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			_, _ = fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
			return nil
		},
	}
}
