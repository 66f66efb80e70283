package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "GraphRisk"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     "graphrisk",
		Short:   "Partner fraud detection for brokerage referral networks",
		Version: version,
		Long: `GraphRisk flags suspicious partner/affiliate-driven trading activity from a
batch snapshot of partners, clients, and trades. It detects three abuse
patterns: opposite trading (cross-partner profit splitting), mirror trading
(account clusters trading in lockstep), and bonus abuse (deposit, claim,
withdraw).`,
		Run: runDefaultEntry,
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run all three detectors over a snapshot",
		Long:  "Load a partner/client/trade snapshot, run the opposite-trading, mirror-trading, and bonus-abuse detectors, and write the combined fraud report",
		RunE:  runScan,
	}

	scanCmd.Flags().String("input", "", "Path to a snapshot JSON file")
	scanCmd.Flags().String("postgres-dsn", "", "Postgres DSN to load the snapshot from")
	scanCmd.Flags().String("redis-addr", "", "Redis address to load the snapshot from")
	scanCmd.Flags().String("redis-key", "", "Redis key holding the snapshot (default graphrisk:snapshot:latest)")
	scanCmd.Flags().String("config", "", "Path to detection config YAML (defaults used when omitted)")
	scanCmd.Flags().Int("workers", 0, "Worker pool size for pair scans (0 = one per CPU)")
	scanCmd.Flags().String("out", "", "Output directory for the report artifact (overrides config)")
	scanCmd.Flags().Duration("timeout", 5*time.Minute, "Abort the run after this long; aborted runs produce no report")

	rootCmd.AddCommand(scanCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// runDefaultEntry prints usage guidance; scanning is always explicit.
func runDefaultEntry(cmd *cobra.Command, args []string) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "graphrisk requires a subcommand in non-interactive use:\n\n")
		fmt.Fprintf(os.Stderr, "  graphrisk scan --input snapshot.json\n")
		fmt.Fprintf(os.Stderr, "  graphrisk scan --postgres-dsn $DSN --out out/reports\n")
		fmt.Fprintf(os.Stderr, "  graphrisk --help\n")
		os.Exit(2)
	}
	_ = cmd.Help()
}
