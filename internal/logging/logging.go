package logging

import (
	"go.uber.org/zap"
)

// L is the process-wide logger. Init must run before any pipeline stage.
var L *zap.SugaredLogger = zap.NewNop().Sugar()

// Init builds the global logger. Debug mode uses the development config with
// full output; otherwise only warnings and above reach the console so the
// run summary stays readable.
func Init(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	logger, err := cfg.Build()
	if err != nil {
		panic("logger init: " + err.Error())
	}
	L = logger.Sugar()
}
