package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/willfong/bankmgr/internal/bank"
	"github.com/willfong/bankmgr/internal/config"
	"github.com/willfong/bankmgr/internal/observability"
	"github.com/willfong/bankmgr/internal/session"
	"github.com/willfong/bankmgr/internal/ui"
	"github.com/willfong/bankmgr/internal/utils"
	"go.uber.org/zap"
)

var cfgFile string
var verbose bool
var noColor bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bankmgr",
	Short: "In-memory console bank",
	Long: `An interactive, single-user bank that lives in memory.

Sign up for a saving or current account, log in, then deposit, withdraw,
transfer to another account by ID, or change your username and password.
Nothing is persisted: all accounts are gone when the program exits.

Settings can come from flags, BANKMGR_* environment variables or a config
file. Flags win over the environment, which wins over the file.

Example usage:
  bankmgr
  bankmgr --seed 42 --max-accounts 10
  bankmgr --log-file bank.log --log-level debug
  BANKMGR_BANK_MAX_ACCOUNTS=5 bankmgr`,
	RunE: runBank,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors")

	rootCmd.Flags().Int("max-accounts", config.MaxAccounts, "maximum number of accounts")
	rootCmd.Flags().Int64("seed", 0, "random seed for account IDs (0 = random)")
	rootCmd.Flags().String("log-file", "", "write JSON logs to this file")
	rootCmd.Flags().String("log-level", config.LogLevel, "log level: debug, info, warn, error")

	// Silence usage on error - we'll print our own messages
	rootCmd.SilenceUsage = true
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"max-accounts": "bank.max_accounts",
	"seed":         "bank.seed",
	"no-color":     "ui.no_color",
	"log-file":     "log.file",
	"log-level":    "log.level",
	"verbose":      "verbose",
}

// loadConfig merges defaults, config file, environment and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	if err := config.Init(v, cfgFile); err != nil {
		return nil, err
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runBank(cmd *cobra.Command, args []string) error {
	u := ui.New(os.Stdout)
	if noColor {
		u.SetNoColor(true)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintln(os.Stderr, u.Error(fmt.Sprintf("Configuration error: %v", err)))
		return err
	}
	if cfg.UI.NoColor {
		u.SetNoColor(true)
	}

	logger, err := observability.NewLogger(cfg.Log, cfg.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, u.Error(fmt.Sprintf("Error creating logger: %v", err)))
		return err
	}
	defer logger.Sync()

	rng := utils.NewRandom(cfg.Bank.Seed)
	store := bank.NewStore(cfg.Bank, rng)
	metrics := observability.NewMetrics()
	console := session.NewConsole(os.Stdin, u)
	ctrl := session.NewController(store, console, u, metrics, logger)

	logger.Debug("starting",
		zap.Int("max_accounts", store.Cap()),
		zap.Uint64("seed", rng.Seed()))

	u.Println(u.Header("Bank Manager"))

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, ctrl, u, logger)
}

// serve runs the session until it ends or ctx is cancelled.
// A blocked read cannot observe ctx, so the session runs on its own
// goroutine and cancellation returns without waiting for input.
func serve(ctx context.Context, ctrl *session.Controller, u *ui.UI, logger *zap.Logger) error {
	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx)
	}()

	select {
	case err := <-done:
		if err == nil || ctx.Err() == nil {
			return err
		}
	case <-ctx.Done():
	}

	u.Println("")
	u.Println(u.Warning("Received shutdown signal"))
	logger.Info("interrupted")
	return nil
}
