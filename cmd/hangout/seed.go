package main

import (
	"fmt"
	"time"

	"github.com/okian/hangout/internal/testevents"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var (
		events   int
		profiles int
		joins    int
		seed     uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the configured store with generated events and profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if c.cfg.DBPath == "" {
				c.log.Warn(ctx, "db_path is empty; seeded data lives only for this process")
			}
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			res, err := testevents.Seed(ctx, c.store, testevents.NewGenerator(seed, nil), profiles, events, joins)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d profiles, %d events, %d joins (%d rejected)\n",
				res.Profiles, res.Events, res.Joins, res.JoinsRejected)
			return nil
		},
	}
	cmd.Flags().IntVarP(&events, "events", "e", 200, "number of events")
	cmd.Flags().IntVarP(&profiles, "profiles", "p", 50, "number of profiles")
	cmd.Flags().IntVar(&joins, "joins", 3, "join attempts per profile")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "generator seed (0 picks one from the clock)")
	return cmd
}
