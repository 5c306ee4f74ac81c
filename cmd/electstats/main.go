package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/statline/electstats/pkg/accuracy"
	"github.com/statline/electstats/pkg/clean"
	"github.com/statline/electstats/pkg/config"
	"github.com/statline/electstats/pkg/dashboard"
	"github.com/statline/electstats/pkg/extract"
	"github.com/statline/electstats/pkg/majority"
	"github.com/statline/electstats/pkg/pdfimg"
	"github.com/statline/electstats/pkg/pipeline"
	"github.com/statline/electstats/pkg/scrape"
	"github.com/statline/electstats/pkg/table"
)

var version = "0.1.0"

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "electstats",
		Short: "Historical election statistics digitization toolkit",
		Long: `Electstats digitizes archival U.S. election result documents.

It scrapes government archives for scanned PDF reports, rasterizes the
pages, extracts the election tables with a vision model, cleans and
sorts the resulting CSVs, and serves the digitized results through a
web dashboard. An evaluation toolkit scores extraction output against
hand-labeled ground truth.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = zap.NewProduction()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to electstats.yaml (default: working directory)")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(cleanCmd())
	rootCmd.AddCommand(pipelineCmd())
	rootCmd.AddCommand(majorityCmd())
	rootCmd.AddCommand(evalCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the layered configuration.
func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func scrapeCmd() *cobra.Command {
	var startURL, outputDir string
	var maxPages int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Discover and download election PDFs from an archive",
		Long: `Crawl a government archive breadth-first, collect links to PDF
documents, and download them named by election year.

Example:
  electstats scrape --url https://history.house.gov/Institution/Election-Statistics/Election-Statistics/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if startURL == "" {
				startURL = cfg.StartURL
			}
			if outputDir == "" {
				outputDir = cfg.PDFDir()
			}

			scrapeConfig := scrape.DefaultConfig(startURL, outputDir)
			if maxPages > 0 {
				scrapeConfig.MaxPages = maxPages
			}

			scraper := scrape.NewScraper(scrapeConfig)
			scraper.SetLogger(logger)
			report, err := scraper.Run(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(report)
			}
			fmt.Print(report.FormatTable())
			return nil
		},
	}

	cmd.Flags().StringVar(&startURL, "url", "", "archive page to start crawling from")
	cmd.Flags().StringVar(&outputDir, "output", "", "directory for downloaded PDFs")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "cap on pages visited")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the report as JSON")
	return cmd
}

func convertCmd() *cobra.Command {
	var inputDir, outputDir, format string
	var dpi int

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Rasterize downloaded PDFs into page images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if inputDir == "" {
				inputDir = cfg.PDFDir()
			}
			if outputDir == "" {
				outputDir = cfg.ImageDir()
			}

			convertConfig := pdfimg.DefaultConfig(inputDir, outputDir)
			if dpi > 0 {
				convertConfig.DPI = dpi
			} else if cfg.DPI > 0 {
				convertConfig.DPI = cfg.DPI
			}
			if format != "" {
				convertConfig.Format = format
			}

			converter, err := pdfimg.NewConverter(convertConfig)
			if err != nil {
				return err
			}
			converter.SetLogger(logger)

			report, err := converter.ConvertDir(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Converted %d PDFs (%d failed)\n", report.Converted, report.Failed)
			for _, file := range report.Files {
				if file.Err != nil {
					fmt.Printf("  [failed] %s: %v\n", file.PDF, file.Err)
				} else {
					fmt.Printf("  [ok] %s: %d pages -> %s\n", file.PDF, file.Pages, file.ImageDir)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "directory holding PDFs")
	cmd.Flags().StringVar(&outputDir, "output", "", "directory for page images")
	cmd.Flags().IntVar(&dpi, "dpi", 0, "rasterization resolution")
	cmd.Flags().StringVar(&format, "format", "", "image format: png, jpeg, or tiff")
	return cmd
}

func extractCmd() *cobra.Command {
	var imageDir, csvDir, raceType, model string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract election tables from page images with a vision model",
		Long: `Send each page image to the Gemini API and collect the returned CSV
rows into one file per source document.

Requires GEMINI_API_KEY in the environment or a .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if imageDir == "" {
				imageDir = cfg.ImageDir()
			}
			if csvDir == "" {
				csvDir = cfg.CSVDir()
			}
			if model == "" {
				model = cfg.Model
			}

			extractor, err := extract.NewGeminiExtractor(cmd.Context(), cfg.APIKey, model)
			if err != nil {
				return err
			}

			extractConfig := extract.DefaultConfig(imageDir, csvDir)
			extractConfig.RaceType = raceType

			runner := extract.NewRunner(extractConfig, extractor)
			runner.SetLogger(logger)

			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Extracted %d pages across %d documents (%d pages failed)\n",
				report.PagesExtracted, len(report.Documents), report.PagesFailed)
			for _, doc := range report.Documents {
				fmt.Printf("  %s -> %s (%d pages)\n", doc.Name, doc.CSVPath, len(doc.Pages))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&imageDir, "images", "", "directory of per-document page images")
	cmd.Flags().StringVar(&csvDir, "csv", "", "directory for extracted CSVs")
	cmd.Flags().StringVar(&raceType, "race", "", "tailor the prompt to one race type (house, senate, presidential)")
	cmd.Flags().StringVar(&model, "model", "", "vision model name")
	return cmd
}

func cleanCmd() *cobra.Command {
	var inputDir, outputDir string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean and sort extracted CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if inputDir == "" {
				inputDir = cfg.CSVDir()
			}
			if outputDir == "" {
				outputDir = inputDir
			}

			report, err := clean.ProcessDir(clean.DefaultConfig(inputDir, outputDir))
			if err != nil {
				return err
			}

			fmt.Printf("Cleaned %d files\n", len(report.Processed))
			for _, name := range report.Processed {
				fmt.Printf("  [ok] %s\n", name)
			}
			for _, failed := range report.Failed {
				fmt.Printf("  [failed] %s: %s\n", failed.Name, failed.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "directory of extracted CSVs")
	cmd.Flags().StringVar(&outputDir, "output", "", "directory for sorted CSVs (default: input directory)")
	return cmd
}

func pipelineCmd() *cobra.Command {
	var startURL, dataDir string
	var skipScrape, skipConvert, skipExtract, skipClean bool

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the full scrape, convert, extract, clean pipeline",
		Long: `Run every stage in order, reusing existing intermediate output for
any skipped stage.

Example:
  electstats pipeline --skip-scrape --data data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if startURL == "" {
				startURL = cfg.StartURL
			}
			if dataDir == "" {
				dataDir = cfg.DataDir
			}

			pipelineConfig := pipeline.DefaultConfig(startURL, dataDir)
			pipelineConfig.SkipScrape = skipScrape
			pipelineConfig.SkipConvert = skipConvert
			pipelineConfig.SkipExtract = skipExtract
			pipelineConfig.SkipClean = skipClean
			if cfg.DPI > 0 {
				pipelineConfig.Convert.DPI = cfg.DPI
			}

			var extractor extract.PageExtractor
			if !skipExtract {
				extractor, err = extract.NewGeminiExtractor(cmd.Context(), cfg.APIKey, cfg.Model)
				if err != nil {
					return err
				}
			}

			run := pipeline.New(pipelineConfig, extractor)
			run.SetLogger(logger)
			report, err := run.Run(cmd.Context())
			if err != nil {
				return err
			}

			if report.Scrape != nil {
				fmt.Printf("Scrape: %d PDFs downloaded\n", report.Scrape.Downloaded)
			}
			if report.Convert != nil {
				fmt.Printf("Convert: %d PDFs rasterized\n", report.Convert.Converted)
			}
			if report.Extract != nil {
				fmt.Printf("Extract: %d pages across %d documents\n",
					report.Extract.PagesExtracted, len(report.Extract.Documents))
			}
			if report.Clean != nil {
				fmt.Printf("Clean: %d files sorted\n", len(report.Clean.Processed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startURL, "url", "", "archive page to start crawling from")
	cmd.Flags().StringVar(&dataDir, "data", "", "root data directory")
	cmd.Flags().BoolVar(&skipScrape, "skip-scrape", false, "reuse PDFs already on disk")
	cmd.Flags().BoolVar(&skipConvert, "skip-convert", false, "reuse existing page images")
	cmd.Flags().BoolVar(&skipExtract, "skip-extract", false, "reuse existing extracted CSVs")
	cmd.Flags().BoolVar(&skipClean, "skip-clean", false, "leave extracted CSVs unsorted")
	return cmd
}

func majorityCmd() *cobra.Command {
	var raceType string
	var year int

	cmd := &cobra.Command{
		Use:   "majority <csv-file>",
		Short: "Compute the winning party and margin per state",
		Long: `Load one election CSV, recover its header, normalize the rows, and
compute per-state winners and margins of victory.

Example:
  electstats majority data/csv/sorted_election_1932.csv --race house --year 1932`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				return fmt.Errorf("--year is required (vote years are taken from the source file)")
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer file.Close()

			rows, err := table.ReadRaw(file)
			if err != nil {
				return err
			}
			scan := table.ScanHeader(rows)
			if !scan.Found {
				return fmt.Errorf("%s: %w", args[0], table.ErrNoHeader)
			}
			normalized, err := table.Normalize(rows, scan, year)
			if err != nil {
				return err
			}

			aliases := table.DefaultAliasTable()
			codes := majority.DefaultCodeTable()
			colors := majority.DefaultColorTable()

			var result majority.Result
			if raceType == "" {
				result, err = majority.Compute(normalized.Records, codes, colors)
			} else {
				contest, ok := table.ParseContestType(raceType, aliases)
				if !ok {
					return fmt.Errorf("unknown race type %q", raceType)
				}
				result, err = majority.ForContest(normalized.Records, contest, year, aliases, codes, colors)
			}
			if err != nil {
				return err
			}

			if len(normalized.Skipped) > 0 {
				fmt.Fprintf(os.Stderr, "skipped %d unusable rows\n", len(normalized.Skipped))
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&raceType, "race", "", "restrict to one race type (house, senate, presidential)")
	cmd.Flags().IntVar(&year, "year", 0, "election year of the source file")
	return cmd
}

// evalReport aggregates every accuracy metric for one table pair.
type evalReport struct {
	Digits accuracy.DigitReport `json:"digits"`
	Text   accuracy.TextReport  `json:"text"`
	Errors accuracy.ErrorReport `json:"errors"`
	Top    []accuracy.Confusion `json:"top_digit_confusions"`
}

func evalCmd() *cobra.Command {
	var numericColumns, textColumns []string

	cmd := &cobra.Command{
		Use:   "eval <true-csv> <predicted-csv>",
		Short: "Score extraction output against hand-labeled ground truth",
		Long: `Compare a predicted CSV against its ground-truth counterpart row by
row: digit-level accuracy with a confusion matrix for numeric columns,
character confusion and edit distances for text columns, and MAE/MAPE
for vote counts.

Example:
  electstats eval truth/1932.csv data/csv/sorted_election_1932.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trueColumns, err := loadColumns(args[0])
			if err != nil {
				return err
			}
			predColumns, err := loadColumns(args[1])
			if err != nil {
				return err
			}
			pair := accuracy.TablePair{True: trueColumns, Pred: predColumns}

			report := evalReport{}
			report.Digits, err = accuracy.EvaluateDigits(pair, numericColumns)
			if err != nil {
				return err
			}
			report.Text, err = accuracy.EvaluateText(pair, textColumns, "")
			if err != nil {
				return err
			}
			report.Errors, err = accuracy.EvaluateNumericErrors(pair, numericColumns)
			if err != nil {
				return err
			}
			report.Top = report.Digits.Confusion.TopConfusions(true)

			return printJSON(report)
		},
	}

	cmd.Flags().StringSliceVar(&numericColumns, "numeric-columns", []string{table.ColumnVotes},
		"numeric columns to score digit by digit")
	cmd.Flags().StringSliceVar(&textColumns, "text-columns",
		[]string{table.ColumnState, table.ColumnCandidate, table.ColumnParty},
		"text columns to score by character confusion and edit distance")
	return cmd
}

// loadColumns reads a CSV file into a column-major table.
func loadColumns(path string) (accuracy.Columns, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	rows, err := table.ReadRaw(file)
	if err != nil {
		return nil, err
	}
	columns, err := accuracy.ColumnsFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return columns, nil
}

func serveCmd() *cobra.Command {
	var addr, csvDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the election results dashboard",
		Long: `Serve the digitized results over HTTP: an HTML index, data table,
map, and chart pages, plus the JSON API they render from.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.ListenAddr
			}
			if csvDir == "" {
				csvDir = cfg.CSVDir()
			}

			server := dashboard.NewServer(csvDir)
			server.SetLogger(logger)

			logger.Info("dashboard listening",
				zap.String("addr", addr),
				zap.String("csv_dir", csvDir))
			fmt.Printf("Serving election dashboard on %s (data: %s)\n", addr, csvDir)
			return http.ListenAndServe(addr, server.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+config.DefaultListenAddr+")")
	cmd.Flags().StringVar(&csvDir, "csv", "", "directory of election CSVs")
	return cmd
}
