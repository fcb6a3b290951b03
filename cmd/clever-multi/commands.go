package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/clever-multi/internal/models"
	"github.com/yourusername/clever-multi/internal/scheduler"
	"github.com/yourusername/clever-multi/internal/selection"
)

var (
	forceFetch     bool
	legLimit       int
	betLimit       int
	targetOdds     float64
	maxLegs        int
	sportFilter    string
	highConfidence bool
	historyLimit   int
	statsFile      string
	jsonOutput     bool
)

func init() {
	fetchCmd.Flags().BoolVarP(&forceFetch, "force", "f", false, "Fetch even when today is not a scheduled fetch day")

	recommendCmd.Flags().IntVarP(&legLimit, "limit", "l", 0, "Maximum legs to show (0 uses recommended_legs_count)")
	recommendCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")

	multiCmd.Flags().Float64VarP(&targetOdds, "target-odds", "t", 0, "Target combined odds (0 uses target_multi_odds)")
	multiCmd.Flags().IntVarP(&maxLegs, "max-legs", "m", 0, "Maximum legs (0 uses max_legs_in_multi)")
	multiCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")

	valueBetsCmd.Flags().StringVarP(&sportFilter, "sport", "s", "", "Only show this sport")
	valueBetsCmd.Flags().IntVarP(&betLimit, "limit", "l", 10, "Maximum bets to show (0 shows all)")
	valueBetsCmd.Flags().BoolVar(&highConfidence, "high-confidence", false, "Only show high-confidence bets")
	valueBetsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 10, "Number of runs to show")

	importStatsCmd.Flags().StringVarP(&statsFile, "file", "f", "", "JSON file holding an array of team stats")
	_ = importStatsCmd.MarkFlagRequired("file")
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the week's odds and store a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !forceFetch && !scheduler.IsFetchDay(time.Now()) {
			fmt.Printf("Today is not a fetch day (%s). Use --force to fetch anyway.\n", scheduler.FetchDays)
			return nil
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.odds.RefreshSnapshot(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Fetched and stored %d markets at %s\n", len(snap.Quotes), snap.FetchedAt.Format(time.RFC3339))
		for sport, c := range snap.CountBySport() {
			fmt.Printf("  %-4s h2h=%d props=%d\n", sport.Upper(), c.H2H, c.Props)
		}
		if n, ok := a.oddsClient.RequestsRemaining(); ok {
			fmt.Printf("API requests remaining: %d\n", n)
		}
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print this week's recommended legs and the suggested multi",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.analyzer.Latest(cmd.Context(), "cli")
		if err != nil {
			return err
		}
		legs := a.pipeline.Legs(result, legLimit)

		if jsonOutput {
			return printJSON(map[string]interface{}{
				"recommended_legs": legs,
				"suggested_multi":  result.Run.Parlay,
			})
		}
		printLegs(legs)
		fmt.Println()
		printParlay(result.Run.Parlay)
		return nil
	},
}

var multiCmd = &cobra.Command{
	Use:   "multi",
	Short: "Build a multi toward a target price",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, legs := targetOdds, maxLegs
		if target == 0 {
			target = cfg.Multi.TargetMultiOdds
		}
		if legs == 0 {
			legs = cfg.Multi.MaxLegsInMulti
		}
		if target <= 1 || legs < 1 {
			return fmt.Errorf("target odds must exceed 1 and max legs must be at least 1")
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.analyzer.Latest(cmd.Context(), "cli")
		if err != nil {
			return err
		}
		parlay := a.pipeline.BuildMulti(result.Run.Recommendations, target, legs)

		if jsonOutput {
			return printJSON(parlay)
		}
		printParlay(parlay)
		return nil
	},
}

var valueBetsCmd = &cobra.Command{
	Use:   "value-bets",
	Short: "Print positive expected value selections",
	RunE: func(cmd *cobra.Command, args []string) error {
		var sport models.Sport
		if sportFilter != "" {
			parsed, err := models.ParseSport(sportFilter)
			if err != nil {
				return err
			}
			sport = parsed
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.analyzer.Latest(cmd.Context(), "cli")
		if err != nil {
			return err
		}

		bets := result.ValueBets
		if sport != "" {
			bets = selection.BySport(bets, sport)
		}
		if highConfidence {
			bets = selection.HighConfidence(bets)
		}
		if betLimit > 0 {
			bets = selection.Top(bets, betLimit)
		}

		if jsonOutput {
			return printJSON(bets)
		}
		printValueBets(bets)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs (requires database.enabled)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Database.Enabled {
			return fmt.Errorf("run history requires database.enabled")
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.repos.Run.ListRecent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		printRuns(runs)
		return nil
	},
}

var importStatsCmd = &cobra.Command{
	Use:   "import-stats",
	Short: "Load team statistics used by the deep prune (requires database.enabled)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Database.Enabled {
			return fmt.Errorf("team stats require database.enabled")
		}

		data, err := os.ReadFile(statsFile)
		if err != nil {
			return err
		}
		var stats []models.TeamSignal
		if err := json.Unmarshal(data, &stats); err != nil {
			return fmt.Errorf("failed to parse %s: %w", statsFile, err)
		}
		for i := range stats {
			sport, err := models.ParseSport(string(stats[i].Sport))
			if err != nil {
				return fmt.Errorf("entry %d (%s): %w", i, stats[i].TeamName, err)
			}
			stats[i].Sport = sport
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.repos.TeamStats.Upsert(cmd.Context(), stats); err != nil {
			return err
		}
		fmt.Printf("Imported %d team stats\n", len(stats))
		return nil
	},
}
