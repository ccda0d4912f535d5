package system

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns the logger used for request tracing. Unless verbose is
// set it discards everything, so command output stays limited to results.
func NewLogger(w io.Writer, verbose bool) *zap.SugaredLogger {
	if !verbose || w == nil {
		return zap.NewNop().Sugar()
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.LevelKey = "level"
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zap.DebugLevel)
	return zap.New(core).Sugar()
}
