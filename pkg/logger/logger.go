package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 建立 zap Logger
//
// 參數:
//
//	level: "debug", "info", "warn", "error"，空字串視為 info
//	development: true 時使用 console 格式輸出，否則為 JSON
//
// 回傳值:
//
//	*zap.Logger: logger，輸出到 stderr 以免干擾 stdout 的 CSV
//	zap.AtomicLevel: 可在執行期間調整的等級
//	error: 等級無法解析或建立失敗
func New(level string, development bool) (*zap.Logger, zap.AtomicLevel, error) {
	atomicLevel := zap.NewAtomicLevel()
	if level != "" {
		if err := atomicLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, atomicLevel, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = atomicLevel
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, atomicLevel, err
	}
	return logger, atomicLevel, nil
}
