package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhibongale/presto/internal/logging"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking PRESTO_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("PRESTO_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the prestoctl CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "prestoctl",
		Short: "prestoctl — inspect query stage executions",
		Long:  "prestoctl registers, feeds, and inspects stage executions on a stage-monitor server.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "Stage-monitor server URL (or PRESTO_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRegisterCmd(),
		newStatusCmd(),
		newListCmd(),
		newTasksCmd(),
		newSummariesCmd(),
	)

	return root
}
