package cmd

import (
	"os"

	"github.com/jsternberg/zap-logfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "keel",
	Short: "keel is a columnar dataframe tool",
	Long:  "keel reads tabular data and runs grouped aggregations and transforms over it.",
}

var flags struct {
	verbose bool
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log progress to stderr")
}

// newLogger builds the process logger. Output is logfmt on stderr so it
// never mixes with result data on stdout.
func newLogger() *zap.Logger {
	level := zapcore.WarnLevel
	if flags.verbose {
		level = zapcore.DebugLevel
	}
	config := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(
		zaplogfmt.NewEncoder(config),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
