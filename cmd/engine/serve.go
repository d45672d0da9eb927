package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/metrics"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger over gRPC",
	Long: `Accept transactions over gRPC (JSON codec). Requests from all connections are
sequenced into a single writer, so transactions are applied one at a time in
arrival order. Prometheus metrics are exposed on metrics.addr when set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	// 1. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts := append(a.processorOptions(), usecase.WithObserver(metrics.NewObserver(reg)))

	// 2. 核心與 Sequencer
	processor := usecase.NewProcessor(a.store, opts...)
	seqCtx, stopSeq := context.WithCancel(context.Background())
	sequencer := usecase.NewSequencer(processor, a.cfg.GRPC.QueueSize, a.log)
	sequencer.Start(seqCtx)

	// 3. gRPC Server
	lis, err := net.Listen("tcp", a.cfg.GRPC.Addr)
	if err != nil {
		stopSeq()
		return err
	}
	s := grpc.NewServer()
	grpc_adapter.RegisterLedgerServiceServer(s, grpc_adapter.NewGrpcServer(sequencer, processor, a.log))
	reflection.Register(s)

	errCh := make(chan error, 2)
	go func() {
		a.log.Info("starting grpc server", zap.String("addr", a.cfg.GRPC.Addr), zap.String("run_id", processor.RunID().String()))
		errCh <- s.Serve(lis)
	}()

	var metricsSrv *http.Server
	if a.cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsSrv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			a.log.Info("starting metrics server", zap.String("addr", a.cfg.Metrics.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Graceful Shutdown
	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutting down server")
	case serveErr = <-errCh:
		a.log.Error("server stopped", zap.Error(serveErr))
	}

	s.GracefulStop()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}
	// gRPC 停止後不會再有新交易，處理完輸送帶上剩下的交易
	stopSeq()
	<-sequencer.Done()
	a.log.Info("server exited")
	return serveErr
}
