package main

import (
	"runtime"
	"time"

	"github.com/okian/hangout/internal/testevents"
	"github.com/spf13/cobra"
)

func smokeCmd() *cobra.Command {
	cfg := testevents.Config{}
	var logFile string
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Drive a running API with generated data and verify its answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			closeLog, err := testevents.SetupLogging(logFile)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()
			if cfg.Seed == 0 {
				cfg.Seed = uint64(time.Now().UnixNano())
			}
			_, err = testevents.Run(cmd.Context(), &cfg)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "base URL of the service")
	f.IntVar(&cfg.NumEvents, "events", 500, "events to create")
	f.IntVar(&cfg.NumProfiles, "profiles", 50, "profiles to create")
	f.IntVar(&cfg.JoinsPerUser, "joins", 3, "join attempts per profile")
	f.IntVar(&cfg.TopK, "top-k", 0, "expected recommendation size (0 uses the default)")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	f.Uint64Var(&cfg.Seed, "seed", 0, "generator seed (0 picks one from the clock)")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log every failed request")
	f.StringVar(&logFile, "log", "", "also write logs to this file")
	return cmd
}
