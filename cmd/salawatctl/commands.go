package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/client"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/i18n"
)

var submitName string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the campaign totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := newClient().Stats(cmd.Context())
		if err != nil {
			logger := newLogger(cmd)
			logger.Debug().Err(err).Msg("stats request failed")
			return fmt.Errorf("%s", i18n.Message(lang, i18n.KeyFetchFailed))
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatStats(client.View{Stats: stats}))
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <amount>",
	Short: "Add salawat to the campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		c := newClient()
		tracker := client.NewTracker(c, lang, client.WithSuccessTTL(0))
		defer tracker.Close()

		// Seed the local totals so the optimistic view has a base.
		if stats, err := c.Stats(cmd.Context()); err == nil {
			tracker.Apply(stats)
		} else {
			logger.Debug().Err(err).Msg("initial stats unavailable")
		}
		tracker.OnChange(func(v client.View) {
			logger.Debug().Str("state", v.State.String()).Int64("total", v.Stats.TotalCount).Msg("submission")
		})

		tracker.SetInput(args[0], submitName)
		err := tracker.Submit(cmd.Context())
		view := tracker.View()
		if err != nil {
			return fmt.Errorf("%s", view.Message)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, view.Message)
		fmt.Fprintln(out, formatStats(view))
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the campaign totals live",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := newLogger(cmd)
		c := newClient()
		tracker := client.NewTracker(c, lang)
		defer tracker.Close()

		out := cmd.OutOrStdout()
		mode := client.ModeConnecting
		var last string
		tracker.OnChange(func(v client.View) {
			line := formatStats(v)
			if line == last {
				return
			}
			last = line
			fmt.Fprintln(out, line)
		})

		syncer := client.NewSyncer(c, tracker, client.SyncOptions{Logger: logger})
		syncer.OnModeChange(func(m client.Mode) {
			if m == mode {
				return
			}
			mode = m
			key := i18n.KeyLivePolling
			if m == client.ModePush {
				key = i18n.KeyLivePush
			}
			fmt.Fprintf(out, "[%s]\n", i18n.Message(lang, key))
		})
		syncer.Start(ctx)
		defer syncer.Close()

		<-ctx.Done()
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVarP(&submitName, "name", "n", "", "Contributor name (optional)")
}
