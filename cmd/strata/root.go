package strata

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/types"
)

var (
	flagJSON    bool
	flagNoColor bool
	flagDebug   bool

	version = "0.1.0"
)

// errRejected marks a run the quality gate rejected; it carries exit code 3
// instead of the generic failure code.
var errRejected = errors.New("quality gate rejected the run")

// rootCmd is the base Cobra command for the Strata CLI.
var rootCmd = &cobra.Command{
	Use:           "strata",
	Short:         "Reverse-engineer architecture decisions from a codebase",
	Long:          "Strata scans a repository tree, detects its technologies, derives architecture decision records with confidence scores, and generates threat-model, tech-debt and diagram artifacts behind a quality gate.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(flagDebug)
	},
}

// Execute runs the Strata CLI. It should be called by the main package.
// Exit codes: 0 success, 1 input validation failure, 2 internal error,
// 3 quality gate rejected.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	switch {
	case errors.Is(err, types.ErrInput):
		os.Exit(1)
	case errors.Is(err, errRejected):
		os.Exit(3)
	default:
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose logging")
}
