package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/derekprior/matchweek/internal/config"
	"github.com/derekprior/matchweek/internal/excel"
	"github.com/derekprior/matchweek/internal/logging"
	"github.com/derekprior/matchweek/internal/matchup"
	"github.com/derekprior/matchweek/internal/schedule"
	"github.com/derekprior/matchweek/internal/validator"
)

const defaultConfigFile = "league.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	var verbose bool
	var log *slog.Logger

	rootCmd := &cobra.Command{
		Use:   "matchweek",
		Short: "Golf league round-robin schedule generator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log = logging.SetupWithLevel(slog.LevelDebug)
			} else {
				log = logging.Setup()
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log scheduler diagnostics")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter league.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate and verify schedules",
	}

	var configFile string
	scheduleCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: league.yaml in current directory)")

	var outputFile string
	var seed int64
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a round-robin schedule for every flight",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			var seedOverride *int64
			if cmd.Flags().Changed("seed") {
				seedOverride = &seed
			}
			return runGenerate(cmd.Context(), log, configPath, outputFile, seedOverride)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output Excel file path")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "Override the seed from the config file")

	verifyCmd := &cobra.Command{
		Use:          "verify <schedule.xlsx>",
		Short:        "Verify that each flight's schedule is a complete round robin",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runVerify(configPath, args[0])
		},
	}

	scheduleCmd.AddCommand(generateCmd, verifyCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(starterConfig()), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

var starterPlayers = []string{
	"Alan Baker", "Bill Carter", "Chris Dunn", "Dave Ellis", "Eric Foster",
	"Frank Gray", "George Hill", "Hank Irwin", "Jay Keller", "Ken Lewis",
}

func starterConfig() string {
	var players strings.Builder
	ids := make([]string, len(starterPlayers))
	for i, name := range starterPlayers {
		ids[i] = uuid.NewString()
		fmt.Fprintf(&players, "      - id: %q\n        name: %q\n", ids[i], name)
	}

	var week1 strings.Builder
	for i := 0; i < len(starterPlayers); i += 2 {
		fmt.Fprintf(&week1, "          - [%q, %q]\n", starterPlayers[i], starterPlayers[i+1])
	}

	return fmt.Sprintf(configTemplate, players.String(), week1.String())
}

const configTemplate = `# Golf League Season Configuration
# ===============================
# This file defines the flights and rules for generating a round-robin
# matchup schedule.

season:
  name: "Spring 2026"
  # Date of week 1. Each following week is played 7 days later.
  start_date: "2026-04-07"
  first_week: 1

  # Number of weeks to schedule. Leave at 0 to schedule a complete round
  # robin: players-1 weeks for an even flight, players weeks for an odd one.
  weeks: 0

  # Weeks that land on a blackout date slide to the following week.
  blackout_dates:
    - date: "2026-05-26"
      reason: "Memorial Day week"

# Seed for the backtracking search. The same config and seed always produce
# the same schedule.
seed: 42

# Odd flights need a bye: one player sits out each week.
allow_byes: false

# A partial schedule covers fewer weeks than a complete round robin. Pairings
# never repeat, but some pairs will not meet.
partial: false

# Bounds for the backtracking search used when fixed weeks cannot be matched
# by the circle method.
search:
  max_restarts: 20
  max_attempts_per_round: 5000

# Flights are scheduled independently. Player ids are optional; a player
# without an id is identified by name. Names must be unique within a flight.
flights:
  - name: A
    players:
%s
    # Fixed weeks are kept exactly as written and the rest of the schedule
    # is built around them. Players can be named by id or by name.
    fixed_weeks:
      - week: 1
        matchups:
%s`

// flightResult holds one flight's schedule and its verification report.
type flightResult struct {
	flight *config.Flight
	sched  *matchup.Schedule
	report validator.Report
}

func runGenerate(ctx context.Context, log *slog.Logger, configPath, outputPath string, seedOverride *int64) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	seed := cfg.Seed
	if seedOverride != nil {
		seed = *seedOverride
	}

	results := make([]flightResult, len(cfg.Flights))
	g, _ := errgroup.WithContext(ctx)
	for i := range cfg.Flights {
		flight := &cfg.Flights[i]
		g.Go(func() error {
			fixed, err := flight.Fixed()
			if err != nil {
				return err
			}
			players := matchup.IDs(flight.Roster())
			sched, err := schedule.Generate(schedule.Request{
				Players:             players,
				Weeks:               cfg.WeeksFor(flight),
				FirstWeek:           cfg.FirstWeek(),
				Fixed:               fixed,
				Seed:                seed,
				AllowByes:           cfg.AllowByes,
				Partial:             cfg.Partial,
				MaxRestarts:         cfg.Search.MaxRestarts,
				MaxAttemptsPerRound: cfg.Search.MaxAttemptsPerRound,
				Logger:              log.With("flight", flight.Name),
			})
			if err != nil {
				return fmt.Errorf("flight %s: %w", flight.Name, err)
			}

			results[i] = flightResult{flight: flight, sched: sched, report: verifier(cfg)(players, sched)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var out []excel.FlightSchedule
	for _, r := range results {
		fmt.Printf("Flight %s: %d players, %d weeks, %d of %d pairings scheduled\n",
			r.flight.Name, len(r.flight.Players), len(r.sched.Rounds), r.report.Distinct, r.report.Expected)
		printMetrics(r.flight, r.report)
		out = append(out, excel.FlightSchedule{Flight: r.flight, Schedule: r.sched})
	}

	f, err := excel.Generate(cfg, out)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}

	fmt.Printf("\n✓ Schedule saved to %s\n", outputPath)
	return nil
}

func verifier(cfg *config.Config) func([]matchup.PlayerID, *matchup.Schedule) validator.Report {
	if cfg.Partial {
		return validator.VerifyPartial
	}
	return validator.Verify
}

func printMetrics(flight *config.Flight, report validator.Report) {
	odd := len(flight.Players)%2 == 1
	if odd {
		fmt.Printf("  %-20s %6s %8s\n", "Player", "Games", "Sits Out")
	} else {
		fmt.Printf("  %-20s %6s\n", "Player", "Games")
	}
	for _, p := range flight.Roster() {
		if odd {
			fmt.Printf("  %-20s %6d %8d\n", p.Name, report.Games[p.ID], len(report.SitOuts[p.ID]))
		} else {
			fmt.Printf("  %-20s %6d\n", p.Name, report.Games[p.ID])
		}
	}
	fmt.Println()
}

func runVerify(configPath, schedulePath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	f, err := excelize.OpenFile(schedulePath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	invalid := 0
	for i := range cfg.Flights {
		flight := &cfg.Flights[i]
		sched, err := excel.ReadSchedule(f, flight)
		if err != nil {
			return fmt.Errorf("reading schedule: %w", err)
		}

		players := matchup.IDs(flight.Roster())
		report := verifier(cfg)(players, sched)

		errors, warnings := 0, 0
		for _, v := range report.Violations() {
			switch v.Type {
			case "error":
				errors++
				fmt.Printf("✗ Flight %s: %s\n", flight.Name, v.Message)
			case "warning":
				warnings++
				fmt.Printf("⚠ Flight %s: %s\n", flight.Name, v.Message)
			}
		}
		if report.Valid {
			fmt.Printf("✓ Flight %s: %d of %d pairings, %d warnings\n", flight.Name, report.Distinct, report.Expected, warnings)
		} else {
			invalid++
			fmt.Printf("✗ Flight %s: %d errors, %d warnings\n", flight.Name, errors, warnings)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d flights failed verification", invalid, len(cfg.Flights))
	}
	return nil
}
