package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/yourusername/clever-multi/internal/models"
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLegs(legs []models.RecommendedLeg) {
	if len(legs) == 0 {
		fmt.Println("No legs passed both selection stages.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSPORT\tEVENT\tSELECTION\tODDS\tMODEL\tEV\tSCORE\tRIVALRY")
	for i, leg := range legs {
		rivalry := ""
		if leg.RivalryFlag {
			rivalry = leg.RivalryName
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%.1f%%\t%+.1f%%\t%.2f\t%s\n",
			i+1, leg.Sport.Upper(), leg.Event(), leg.SelectionName, leg.DecimalOdds,
			leg.ModelProbability*100, leg.ExpectedValue*100, leg.CompositeScore, rivalry)
	}
	_ = w.Flush()
}

func printParlay(p models.Parlay) {
	if p.NumLegs == 0 {
		fmt.Println("No multi could be built.")
		return
	}
	fmt.Printf("Suggested multi: %d legs @ %.2f (target %.2f, hit probability %.1f%%)\n",
		p.NumLegs, p.CombinedOdds, p.TargetOdds, p.CombinedProbability*100)
	for _, leg := range p.Legs {
		fmt.Printf("  %-28s %-40s %.2f\n", leg.Event(), leg.SelectionName, leg.DecimalOdds)
	}
	fmt.Printf("$%.2f returns $%.2f\n", p.Stake, p.PotentialReturn)
}

func printValueBets(bets []models.ValueBet) {
	if len(bets) == 0 {
		fmt.Println("No value bets found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPORT\tEVENT\tSELECTION\tODDS\tEV\tCONFIDENCE\tRATING")
	for _, b := range bets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%+.1f%%\t%s\t%d\n",
			b.Sport.Upper(), b.Event(), b.SelectionName, b.DecimalOdds,
			b.ExpectedValue*100, b.Confidence, b.ValueRating)
	}
	_ = w.Flush()
}

func printRuns(runs []*models.PipelineRun) {
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCOMPLETED\tQUOTES\tSKIPPED\tSTAGE1\tLEGS\tMULTI")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%.2f\n",
			r.ID.String()[:8], r.CompletedAt.Format(time.RFC822), r.QuotesReceived, r.QuotesSkipped,
			r.Stage1Count, len(r.Recommendations), r.Parlay.CombinedOdds)
	}
	_ = w.Flush()
}
