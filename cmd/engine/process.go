package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/in/csv"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

func init() {
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process [FILE]",
	Short: "Process a transactions CSV and print the final accounts CSV",
	Long: `Read transactions (type, client, tx, amount) from FILE, or stdin when FILE
is omitted, and write client, available, held, total, locked to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	var input io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		a.log.Info("reading transactions", zap.String("file", args[0]))
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		input = bufio.NewReader(f)
	} else {
		a.log.Info("reading transactions from stdin")
	}

	processor := usecase.NewProcessor(a.store, a.processorOptions()...)
	return processStream(ctx, processor, input, cmd.OutOrStdout(), a.log)
}

// processStream 逐筆處理交易，全部成功後輸出帳戶 CSV
// 解析或儲存層錯誤會中止處理，不輸出任何結果
func processStream(ctx context.Context, processor *usecase.Processor, r io.Reader, w io.Writer, log *zap.Logger) error {
	reader := csv.NewReader(r)
	count := 0
	for {
		tran, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("parse transactions: %w", err)
		}
		if _, err := processor.Process(ctx, tran); err != nil {
			return err
		}
		count++
	}

	views, err := processor.GetAllClientViews(ctx)
	if err != nil {
		return err
	}
	log.Info("transactions processed",
		zap.Int("transactions", count),
		zap.Int("clients", len(views)),
		zap.String("run_id", processor.RunID().String()),
	)
	return csv.WriteViews(w, views)
}
