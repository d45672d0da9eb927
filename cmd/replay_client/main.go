package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/in/csv"
	grpc_adapter "github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	pkggrpc "github.com/JoeShih716/go-payments-engine/pkg/grpc"
	"github.com/JoeShih716/go-payments-engine/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "replay_client [FILE]",
	Short: "Replay a transactions CSV against a running ledger server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		workers, _ := cmd.Flags().GetInt("workers")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		level, _ := cmd.Flags().GetString("log-level")

		log, _, err := logger.New(level, false)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if err := run(addr, path, workers, timeout, log); err != nil {
			log.Error("replay failed", zap.Error(err))
			return err
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().String("addr", "localhost:50051", "ledger gRPC address")
	rootCmd.Flags().Int("workers", 8, "number of concurrent senders")
	rootCmd.Flags().Duration("timeout", 120*time.Second, "overall timeout")
	rootCmd.Flags().String("log-level", "info", "log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(addr, path string, workers int, timeout time.Duration, log *zap.Logger) error {
	var input io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}
	trans, err := csv.NewReader(input).ReadAll()
	if err != nil {
		return err
	}

	pool := pkggrpc.NewPool(pkggrpc.WithLogger(log))
	defer pool.Close()
	conn, err := pool.GetConnection(addr)
	if err != nil {
		return err
	}
	client := grpc_adapter.NewLedgerClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	startTime := time.Now()
	ignored, err := replay(ctx, client, trans, workers)
	if err != nil {
		return err
	}
	elapsed := time.Since(startTime)
	log.Info("replay finished",
		zap.Int("transactions", len(trans)),
		zap.Int64("ignored", ignored),
		zap.Duration("elapsed", elapsed),
		zap.Float64("tps", float64(len(trans))/elapsed.Seconds()),
	)

	list, err := client.ListClients(ctx, &grpc_adapter.ListClientsRequest{})
	if err != nil {
		return err
	}
	return csv.WriteViews(os.Stdout, list.Clients)
}

// replay 依客戶分片送出交易
// 同一個客戶的交易固定由同一個 worker 依檔案順序送出，不同客戶之間可以並行
func replay(ctx context.Context, client *grpc_adapter.LedgerClient, trans []domain.Transaction, workers int) (int64, error) {
	if workers < 1 {
		workers = 1
	}
	shards := make([][]domain.Transaction, workers)
	for _, tran := range trans {
		i := int(tran.Client) % workers
		shards[i] = append(shards[i], tran)
	}

	var (
		wg      sync.WaitGroup
		ignored atomic.Int64
		errMu   sync.Mutex
		errs    []error
	)
	for _, shard := range shards {
		wg.Add(1)
		go func(shard []domain.Transaction) {
			defer wg.Done()
			for _, tran := range shard {
				resp, err := client.Process(ctx, grpc_adapter.NewProcessRequest(tran))
				if err != nil {
					errMu.Lock()
					errs = append(errs, fmt.Errorf("%s %d for client %d: %w", tran.Type, tran.Tx, tran.Client, err))
					errMu.Unlock()
					return
				}
				if !resp.Applied {
					ignored.Add(1)
				}
			}
		}(shard)
	}
	wg.Wait()
	return ignored.Load(), errors.Join(errs...)
}
