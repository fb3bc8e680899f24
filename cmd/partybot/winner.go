package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plu-programming-party/partybot/internal/config"
	"github.com/plu-programming-party/partybot/internal/telemetry"
	"github.com/plu-programming-party/partybot/internal/webwritten"
)

func newWinnerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "winner",
		Short: "Run one webwritten winner selection round now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger()

			store, err := webwritten.OpenStore(cfg.WebwrittenDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			scheduler := webwritten.NewScheduler(store, webwritten.NewGenerator(nil, logger),
				telemetry.ComponentLogger(logger, "scheduler"), nil)
			winner, err := scheduler.RunSelection(context.Background())
			if err != nil {
				return err
			}
			if winner == nil {
				fmt.Println("No winner today — not enough votes.")
				return nil
			}
			fmt.Printf("Winner (%.1f avg over %d votes): %s\n", winner.Rating, winner.Votes, winner.Sentence)
			return nil
		},
	}
}
