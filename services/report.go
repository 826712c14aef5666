package services

import (
	"fmt"
	"strings"

	"github.com/allendavis-developer/cashgensuite/models"
)

// PrintAnalysis renders a price analysis to the terminal.
func PrintAnalysis(a *models.PriceAnalysis) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  💰 MARKET PRICE ANALYSIS — %s\033[0m\n", a.ItemName)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Search term       : \033[1m%s\033[0m\n", a.SearchTerm)
	fmt.Printf("  Listings scraped  : \033[1m%d\033[0m\n", a.TotalListings)
	fmt.Printf("  After filtering   : \033[1m%d\033[0m (%d outliers removed)\n",
		a.CleanedListings, a.AnomalyCount)
	fmt.Printf("  Confidence        : \033[1m%d/100\033[0m\n", a.Confidence)
	fmt.Println()

	// Price statistics
	fmt.Printf("\033[1;33m  Price Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if a.Stats.HasData() {
		fmt.Printf("  Minimum : \033[1;32m£%.2f\033[0m\n", a.Stats.Min)
		fmt.Printf("  Average : \033[1;32m£%.2f\033[0m\n", a.Stats.Average)
		fmt.Printf("  Median  : \033[1;32m£%.2f\033[0m\n", a.Stats.Median)
		fmt.Printf("  Mode    : \033[1;32m£%.2f\033[0m\n", a.Stats.Mode)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	// Estimate and buying range
	fmt.Printf("\033[1;33m  Recommendation\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if a.HasEstimate {
		fmt.Printf("  Market estimate : \033[1;32m£%.2f\033[0m (time-weighted)\n", a.Estimate)
		fmt.Printf("  Margin          : %.0f%%\n", a.EffectiveMargin*100)
		for _, m := range a.RulesApplied {
			fmt.Printf("    %s rule %q: %+.0f%%\n", m.RuleType, m.MatchValue, m.Adjustment*100)
		}
		fmt.Printf("  Suggested offer : \033[1;31m£%.2f\033[0m\n", a.SuggestedOffer)
	} else {
		fmt.Printf("  No sold listings with dates — no estimate\n")
	}
	fmt.Println()

	// Distribution
	fmt.Printf("\033[1;33m  Price Distribution\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(a.Histogram.Bins) == 0 {
		fmt.Printf("  No distribution data\n")
	} else {
		for _, bin := range a.Histogram.Bins {
			bar := strings.Repeat("█", bin.Count)
			fmt.Printf("  £%8.2f – £%8.2f %s (%d)\n", bin.Start, bin.End, bar, bin.Count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}
