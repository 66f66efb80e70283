package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jayalath-jknr/GraphRisk/internal/config"
	"github.com/jayalath-jknr/GraphRisk/internal/engine"
	"github.com/jayalath-jknr/GraphRisk/internal/provider"
	"github.com/jayalath-jknr/GraphRisk/internal/report"
)

func runScan(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	workers, _ := cmd.Flags().GetInt("workers")
	outDir, _ := cmd.Flags().GetString("out")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}

	src, err := selectProvider(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snap, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("snapshot load failed: %w", err)
	}

	rep, err := engine.New(cfg).Run(ctx, snap)
	if err != nil {
		return err
	}

	path, err := report.WriteJSON(rep, cfg.Output.Dir)
	if err != nil {
		return err
	}

	fmt.Printf("Scan completed: %d findings, estimated fraud value $%.2f\n",
		rep.Totals.Findings, rep.Totals.EstimatedFraudValue)
	fmt.Printf("  opposite trading: %d pairs\n", rep.OppositeTrading.TotalSchemes)
	fmt.Printf("  mirror trading:   %d clusters (%d clients)\n",
		rep.MirrorTrading.TotalGroups, rep.MirrorTrading.TotalClientsInvolved)
	fmt.Printf("  bonus abuse:      %d clients, %d partners\n",
		rep.BonusAbuse.TotalSuspiciousClients, rep.BonusAbuse.TotalSuspiciousPartners)
	fmt.Printf("Report written to %s\n", path)

	return nil
}

// selectProvider picks the snapshot source from flags; exactly one must be
// given.
func selectProvider(cmd *cobra.Command) (provider.Provider, error) {
	input, _ := cmd.Flags().GetString("input")
	dsn, _ := cmd.Flags().GetString("postgres-dsn")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")
	redisKey, _ := cmd.Flags().GetString("redis-key")

	sources := 0
	for _, s := range []string{input, dsn, redisAddr} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("exactly one of --input, --postgres-dsn, --redis-addr is required")
	}

	switch {
	case input != "":
		return provider.NewJSONFile(input), nil
	case dsn != "":
		pg, err := provider.OpenPostgres(dsn)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		log.Info().Str("addr", redisAddr).Msg("using redis snapshot source")
		return provider.NewRedis(client, redisKey), nil
	}
}
