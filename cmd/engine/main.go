package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
	"github.com/JoeShih716/go-payments-engine/internal/config"
	"github.com/JoeShih716/go-payments-engine/pkg/journal"
	"github.com/JoeShih716/go-payments-engine/pkg/logger"
	"github.com/JoeShih716/go-payments-engine/pkg/mysql"
)

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Apply deposits, withdrawals, disputes, resolves and chargebacks to client accounts",
	Long: `engine reads a stream of transactions, applies them in order to per-client
accounts and reports the final state of every account.

Business-rule violations (insufficient funds, unknown dispute targets,
transactions on frozen accounts) are ignored and logged; parse, I/O and
storage errors abort the run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "config/config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Override log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig 載入設定並套用 flag 覆蓋
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

// app 組裝好的依賴與對應的關閉函式
type app struct {
	cfg     config.Config
	log     *zap.Logger
	store   usecase.LedgerStore
	journal *journal.Journal
	closers []func() error
}

// newApp 依設定建立 logger、儲存層與 journal
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, _, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() error {
		_ = log.Sync()
		return nil
	})

	switch cfg.Store.Driver {
	case config.StoreMySQL:
		dbClient, err := mysql.NewClient(cfg.MySQL, log)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, dbClient.Close)
		store := mysql_adapter.NewLedgerStore(dbClient)
		if err := store.AutoMigrate(ctx); err != nil {
			a.close()
			return nil, err
		}
		a.store = store
		log.Info("using mysql ledger store", zap.String("host", cfg.MySQL.Host), zap.String("db", cfg.MySQL.DBName))
	default:
		store := memory.NewLedgerStore()
		a.closers = append(a.closers, store.Close)
		a.store = store
	}

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		a.journal = j
		a.closers = append(a.closers, j.Close)
	}
	return a, nil
}

// processorOptions 共用的 Processor 選項
func (a *app) processorOptions() []usecase.ProcessorOption {
	opts := []usecase.ProcessorOption{usecase.WithLogger(a.log)}
	if a.journal != nil {
		opts = append(opts, usecase.WithJournal(a.journal))
	}
	return opts
}

// close 依建立的相反順序關閉
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
}
