package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/allendavis-developer/cashgensuite/bridge"
	"github.com/allendavis-developer/cashgensuite/config"
	"github.com/allendavis-developer/cashgensuite/scraper/ebay"
	"github.com/allendavis-developer/cashgensuite/services"
	"github.com/allendavis-developer/cashgensuite/storage"
	"github.com/allendavis-developer/cashgensuite/utils"
)

func main() {
	mode := flag.String("mode", "analyze", "Which function to run: analyze, import, bridge")
	item := flag.String("item", "", "Item name to analyze")
	category := flag.String("category", "", "Item category (margin and search-term lookup)")
	subcategory := flag.String("subcategory", "", "Item subcategory")
	manufacturer := flag.String("manufacturer", "", "Item manufacturer")
	model := flag.String("model", "", "Item model")
	attrs := flag.String("attrs", "", "Comma-separated key=value attributes (e.g. storage=128GB)")
	csvPath := flag.String("csv", "", "Raw listings CSV for -mode import")
	noDB := flag.Bool("no-db", false, "Skip PostgreSQL persistence")
	flag.Parse()

	cfg := config.Load()
	logger := utils.NewLogger(cfg.Verbose)

	margins := defaultMarginBook(cfg.DefaultMargin)
	analyzer, err := services.NewAnalyzer(logger, margins, cfg.CacheTTL)
	if err != nil {
		logger.Error("Failed to create analyzer: %v", err)
		os.Exit(1)
	}

	var pgWriter *storage.PostgresWriter
	if !*noDB {
		pgWriter, err = storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running (docker compose up -d) or pass -no-db")
			os.Exit(1)
		}
		defer pgWriter.Close()
	}

	switch *mode {
	case "analyze":
		if *item == "" {
			fmt.Println("Please provide -item for analyze mode")
			os.Exit(1)
		}
		req := services.AnalyzeRequest{
			ItemName:     *item,
			Category:     *category,
			Subcategory:  *subcategory,
			Manufacturer: *manufacturer,
			Model:        *model,
			Attributes:   parseAttrs(*attrs),
		}
		runAnalyze(cfg, logger, analyzer, pgWriter, req)

	case "import":
		if *item == "" || *csvPath == "" {
			fmt.Println("Please provide both -item and -csv for import mode")
			os.Exit(1)
		}
		req := services.AnalyzeRequest{
			ItemName:     *item,
			Category:     *category,
			Subcategory:  *subcategory,
			Manufacturer: *manufacturer,
			Model:        *model,
			Attributes:   parseAttrs(*attrs),
		}
		runImport(logger, analyzer, pgWriter, req, *csvPath)

	case "bridge":
		var store storage.AnalysisWriter
		if pgWriter != nil {
			store = pgWriter
		}
		srv := bridge.NewServer(cfg.BridgeAddr, logger, analyzer, store)
		if err := srv.ListenAndServe(); err != nil {
			logger.Error("Bridge server failed: %v", err)
			os.Exit(1)
		}

	default:
		fmt.Println("Unknown mode:", *mode)
		os.Exit(1)
	}
}

// runAnalyze scrapes sold listings for the item, saves the raw dump, and
// runs the pricing pipeline.
func runAnalyze(cfg *config.Config, logger *utils.Logger, analyzer *services.Analyzer,
	pg *storage.PostgresWriter, req services.AnalyzeRequest) {

	searchTerm := services.BuildSearchTerm(req.ItemName, req.Category, req.Attributes)
	logger.Info("=== Market analysis for %q (search: %q) ===", req.ItemName, searchTerm)

	scraper := ebay.New(cfg, logger)
	raw, err := scraper.ScrapeSold(searchTerm)
	if err != nil {
		logger.Error("eBay scrape failed: %v", err)
		os.Exit(1)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
	} else {
		defer csvWriter.Close()
		if err := csvWriter.WriteRaw(raw); err != nil {
			logger.Error("CSV write failed: %v", err)
		} else {
			logger.Info("Raw listings saved to %s", cfg.CSVOutputPath)
		}
	}

	req.Raw = raw
	finishAnalysis(logger, analyzer, pg, req)
}

// runImport re-runs the pipeline over a previously saved raw CSV.
func runImport(logger *utils.Logger, analyzer *services.Analyzer,
	pg *storage.PostgresWriter, req services.AnalyzeRequest, csvPath string) {

	raw, err := storage.ReadRawCSV(csvPath)
	if err != nil {
		logger.Error("CSV import failed: %v", err)
		os.Exit(1)
	}
	if len(raw) == 0 {
		logger.Error("No listings found in %s", csvPath)
		os.Exit(1)
	}
	logger.Info("Imported %d raw listings from %s", len(raw), csvPath)

	req.Raw = raw
	finishAnalysis(logger, analyzer, pg, req)
}

func finishAnalysis(logger *utils.Logger, analyzer *services.Analyzer,
	pg *storage.PostgresWriter, req services.AnalyzeRequest) {

	analysis, listings := analyzer.AnalyzeWithListings(req, true)
	services.PrintAnalysis(analysis)

	if pg != nil {
		if err := pg.WriteListings(req.ItemName, listings); err != nil {
			logger.Error("Persist listings failed: %v", err)
		}
		if err := pg.WriteAnalysis(analysis); err != nil {
			logger.Error("Persist analysis failed: %v", err)
		} else {
			logger.Info("Analysis stored in PostgreSQL (table: price_analyses)")
		}
	}
}

// defaultMarginBook seeds the margin configuration. The categories and rules
// mirror the store's standing pricing policy; the base margin can be
// overridden per environment.
func defaultMarginBook(base float64) *services.MarginBook {
	book := services.NewMarginBook()
	book.Categories["smartphones and mobile"] = services.Category{Name: "Smartphones and Mobile", BaseMargin: base}
	book.Categories["games consoles"] = services.Category{Name: "Games Consoles", BaseMargin: base}
	book.Categories["laptops"] = services.Category{Name: "Laptops", BaseMargin: base}
	book.Rules["smartphones and mobile"] = []services.MarginRule{
		{RuleType: "manufacturer", MatchValue: "Apple", Adjustment: -0.05, Active: true},
	}
	return book
}

func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	if raw == "" {
		return attrs
	}
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			attrs[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	return attrs
}
