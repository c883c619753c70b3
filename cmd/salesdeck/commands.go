package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ncanzani/salesdeck/internal/config"
	"github.com/ncanzani/salesdeck/internal/history"
	"github.com/ncanzani/salesdeck/internal/status"
)

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health, queue depth, and knowledge index size",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newConsoleClient()
		if err != nil {
			return err
		}

		agg := status.New(client, cfg.Poll.Interval())
		snap := agg.Refresh(cmd.Context())
		renderSnapshot(snap)
		printStatus("Webhook", "%s", client.WebhookURL())

		recordRefresh(cfg, snap)
		return nil
	},
}

// --- watch ---

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard: refresh status on a fixed cadence until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newConsoleClient()
		if err != nil {
			return err
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = cfg.Poll.Interval()
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		printStep("watching %s every %s (ctrl-c to stop)", client.BaseURL(), interval)

		agg := status.New(client, interval)
		agg.Run(ctx, func(snap status.Snapshot) {
			renderSnapshot(snap)
			recordRefresh(cfg, snap)
			printStep("next refresh in %s", interval)
		})
		return nil
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "refresh interval (default from config, 15s)")
}

// renderSnapshot prints the merged status view. Transport failure and
// per-subsystem failure are different channels: the first is a banner, the
// second shows inline on the affected subsystem only.
func renderSnapshot(snap status.Snapshot) {
	if snap.Unreachable {
		printError("%s", snap.LastError)
		if snap.Health == nil && snap.Stats == nil {
			return
		}
		printStep("showing last known data from %s", snap.RefreshedAt.Format(time.RFC3339))
	}

	sys := snap.System()

	switch {
	case snap.Health == nil:
		printStatus("API", "unknown")
	case sys.APIOK:
		printStatus("API", "ok (v%s, %s)", snap.Health.Version, snap.Health.Env)
	default:
		printStatus("API", "error (v%s, %s)", snap.Health.Version, snap.Health.Env)
	}

	if snap.Stats == nil {
		printStatus("Queue", "unknown")
		printStatus("Index", "unknown")
		return
	}

	q := snap.Stats.Queue
	if !sys.QueueOK {
		printStatus("Queue", "down — %s", q.Error)
	} else {
		printStatus("Queue", "ok — %d queued, %d running, %d done, %d failed, %d deferred",
			q.Queued, q.Started, q.Finished, q.Failed, q.Deferred)
	}
	if snap.FailedJobsWarning() {
		printWarning("%d failed job(s) in the queue", q.Failed)
	}

	r := snap.Stats.RAG
	if !sys.RAGOK {
		printStatus("Index", "down — %s", r.Error)
	} else {
		printStatus("Index", "ok — %d catalog items, %d support docs", r.Catalog, r.SupportDocs)
	}

	c := snap.Stats.Config
	printStatus("Provider", "%s", c.WhatsAppProvider)
	printStatus("Model", "%s", c.LLMModel)
}

// recordRefresh appends the refresh to the local history store. History is a
// convenience; failure to record never fails the command.
func recordRefresh(cfg config.Config, snap status.Snapshot) {
	store, err := history.Open(cfg.Storage.DataDir)
	if err != nil {
		log.Warn().Err(err).Msg("history store unavailable")
		return
	}
	defer store.Close()

	sys := snap.System()
	rec := history.Refresh{
		At:          time.Now(),
		APIOK:       sys.APIOK,
		QueueOK:     sys.QueueOK,
		RAGOK:       sys.RAGOK,
		Unreachable: snap.Unreachable,
	}
	if snap.Stats != nil {
		rec.Queued = snap.Stats.Queue.Queued
		rec.Failed = snap.Stats.Queue.Failed
		rec.Catalog = snap.Stats.RAG.Catalog
		rec.SupportDocs = snap.Stats.RAG.SupportDocs
	}
	if err := store.SaveRefresh(rec); err != nil {
		log.Warn().Err(err).Msg("recording refresh failed")
	}
}

// --- job ---

var jobCmd = &cobra.Command{
	Use:   "job <id>",
	Short: "Show the status of a queued message job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newConsoleClient()
		if err != nil {
			return err
		}

		job, err := client.Job(cmd.Context(), args[0])
		if err != nil {
			return friendly(err)
		}

		printStatus("Job", "%s", job.JobID)
		printStatus("State", "%s", job.Status)
		printStatus("Enqueued", "%s", orDash(job.EnqueuedAt))
		printStatus("Started", "%s", orDash(job.StartedAt))
		if job.Result != "" {
			printStatus("Result", "%s", job.Result)
		}
		return nil
	},
}

// --- webhook-url ---

var webhookURLCmd = &cobra.Command{
	Use:   "webhook-url",
	Short: "Print the webhook URL to register with the WhatsApp provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newConsoleClient()
		if err != nil {
			return err
		}
		cmd.Println(client.WebhookURL())
		return nil
	},
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent refreshes and ingestion submissions recorded locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := history.Open(cfg.Storage.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		refreshes, err := store.RecentRefreshes(limit)
		if err != nil {
			return err
		}
		if len(refreshes) > 0 {
			printStep("recent refreshes")
			for _, r := range refreshes {
				cmd.Printf("%s  api=%s queue=%s index=%s", r.At.Format(time.RFC3339),
					okLabel(r.APIOK), okLabel(r.QueueOK), okLabel(r.RAGOK))
				if r.Unreachable {
					cmd.Printf("  (unreachable)")
				}
				cmd.Println()
			}
		}

		ingestions, err := store.RecentIngestions(limit)
		if err != nil {
			return err
		}
		if len(ingestions) > 0 {
			printStep("recent ingestions")
			for _, i := range ingestions {
				cmd.Printf("%s  %s %-8s  %s", i.At.Format(time.RFC3339), i.ID, i.Type, i.Status)
				if i.Status == "ok" {
					cmd.Printf("  %d chunks → %s", i.Chunks, i.Collection)
				} else if i.Error != "" {
					cmd.Printf("  %s", i.Error)
				}
				cmd.Println()
			}
		}

		if len(refreshes) == 0 && len(ingestions) == 0 {
			cmd.Println("No history yet.")
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded ingestion submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := history.Open(cfg.Storage.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		i, err := store.GetIngestion(args[0])
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("no ingestion recorded with id %s", args[0])
		}
		if err != nil {
			return err
		}

		printStatus("ID", "%s", i.ID)
		printStatus("Submitted", "%s", i.At.Format(time.RFC3339))
		printStatus("Type", "%s", i.Type)
		printStatus("Status", "%s", i.Status)
		if i.Status == "ok" {
			printStatus("Indexed", "%d chunk(s) into %s", i.Chunks, i.Collection)
		} else if i.Error != "" {
			printStatus("Error", "%s", i.Error)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of records per section")
	historyCmd.AddCommand(historyShowCmd)
}

func okLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "down"
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change console configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all config keys and their current values",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, k := range config.ShowAll(cfg) {
			cmd.Printf("%-24s %-36s %s\n", k.Key, k.Value, k.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetKey(args[0], args[1]); err != nil {
			return err
		}
		printSuccess("Set %s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
