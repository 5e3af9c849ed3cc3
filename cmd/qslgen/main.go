package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"qslgen/internal/config"
	"qslgen/internal/contact"
	"qslgen/internal/csvload"
	"qslgen/internal/history"
	"qslgen/internal/layout"
	"qslgen/internal/preview"
	"qslgen/internal/render"
)

var (
	configPath string
	verbose    bool
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qslgen",
		Short: "Generate QSL cards from ham radio contact logs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zapCfg := zap.NewProductionConfig()
			if verbose {
				zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zapCfg.Build()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "qsl_config.json", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(sampleCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var (
		outputDir   string
		template    string
		batchByCall bool
		maxContacts int
		strict      bool
		autoClean   bool
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "generate [contacts.csv] [template-image]",
		Short: "Generate QSL card images from a contact CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Command line wins over config for the session.
			if outputDir == "" {
				outputDir = cfg.Output.DefaultDirectory
			}
			if template == "" {
				template = cfg.Template.DefaultImage
			}
			if len(args) > 1 {
				template = args[1]
			}
			if !cmd.Flags().Changed("batch-by-call") {
				batchByCall = cfg.Generation.BatchByCall
			}
			if maxContacts > 0 {
				cfg.Table.MaxContacts = maxContacts
			}
			if autoClean {
				cfg.Output.AutoClean = true
			}

			return runGenerate(cfg, args[0], template, outputDir, batchByCall, strict, noHistory)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "output directory (default from config)")
	cmd.Flags().StringVarP(&template, "template", "t", "", "template image (default from config)")
	cmd.Flags().BoolVarP(&batchByCall, "batch-by-call", "b", false, "group contacts by callsign")
	cmd.Flags().IntVar(&maxContacts, "max-contacts", 0, "maximum contacts per card (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort on the first bad CSV row instead of skipping it")
	cmd.Flags().BoolVar(&autoClean, "auto-clean", false, "clear the output directory without asking")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip recording the run in the history database")
	return cmd
}

func runGenerate(cfg *config.Config, csvPath, template, outputDir string, batchByCall, strict, noHistory bool) error {
	runID := uuid.NewString()[:8]
	log := logger.With(zap.String("run_id", runID))

	rows, err := csvload.Load(csvPath)
	if err != nil {
		return err
	}

	rowMaps := make([]map[string]string, len(rows))
	for i, r := range rows {
		rowMaps[i] = r
	}
	contacts, skipped, err := contact.NormalizeAll(rowMaps, contact.Options{
		Strict:      strict,
		HzThreshold: cfg.Generation.HzThreshold,
	})
	if err != nil {
		return err
	}
	for _, pe := range skipped {
		log.Warn("skipping row", zap.Int("row", pe.Row), zap.String("field", pe.Field), zap.String("value", pe.Value))
	}
	fmt.Printf("Loaded %d contacts (%d skipped)\n", len(contacts), len(skipped))

	batches, err := layout.Plan(contacts, batchByCall, cfg.Table.MaxContacts)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		fmt.Println("Nothing to generate.")
		return nil
	}

	if err := prepareOutputDir(outputDir, cfg.Output.AutoClean); err != nil {
		return err
	}

	renderer, err := render.New(cfg, log)
	if err != nil {
		return err
	}
	measurer := renderer.Measurer()
	tables := cfg.ModeTables()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var cards []history.Card
	for _, b := range batches {
		plan, err := layout.BuildPlan(b, cfg, tables, cfg.Bands, measurer, rng)
		if err != nil {
			return err
		}

		img, err := renderer.Render(plan, template)
		if err != nil {
			return err
		}

		filename := cardFilename(b, batchByCall, len(cards)+1)
		if err := renderer.Save(img, filepath.Join(outputDir, filename)); err != nil {
			return err
		}

		log.Debug("card written",
			zap.String("callsign", b.Callsign),
			zap.String("file", filename),
			zap.Int("contacts", len(b.Contacts)))
		fmt.Printf("  Saved: %s\n", filename)

		cards = append(cards, history.Card{
			RunID:    runID,
			Callsign: b.Callsign,
			Filename: filename,
			Contacts: len(b.Contacts),
		})
	}

	if !noHistory && cfg.Output.HistoryDB != "" {
		if err := recordRun(cfg.Output.HistoryDB, history.Run{
			ID:        runID,
			CSVPath:   csvPath,
			OutputDir: outputDir,
			Cards:     len(cards),
			Contacts:  len(contacts),
			Skipped:   len(skipped),
			CreatedAt: time.Now().UTC(),
		}, cards); err != nil {
			log.Warn("could not record run history", zap.Error(err))
		}
	}

	mode := "individual"
	if batchByCall {
		mode = "batched"
	}
	fmt.Printf("Generated %d %s QSL cards in %s\n", len(cards), mode, outputDir)
	return nil
}

func recordRun(dbPath string, run history.Run, cards []history.Card) error {
	s, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.RecordRun(run, cards)
}

// cardFilename names a card after its callsign when it has one; cards
// for a callsign spanning multiple sheets get a sequence suffix.
func cardFilename(b layout.Batch, batchByCall bool, seq int) string {
	if b.Callsign == "" {
		return fmt.Sprintf("card_%03d.png", seq)
	}
	if b.Total == 1 {
		return b.Callsign + ".png"
	}
	if batchByCall {
		return fmt.Sprintf("%s_card_%d_of_%d.png", b.Callsign, b.Index, b.Total)
	}
	return fmt.Sprintf("%s_%d_of_%d.png", b.Callsign, b.Index, b.Total)
}

func prepareOutputDir(dir string, autoClean bool) error {
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) > 0 {
		if autoClean {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("clean output dir: %w", err)
			}
			fmt.Printf("Cleared directory: %s\n", dir)
		} else {
			fmt.Printf("Output directory %s has %d entries; new cards may overwrite files with the same names.\n", dir, len(entries))
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

func sampleCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "sample [contacts.csv]",
		Short: "Show the first few parsed contacts and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			rows, err := csvload.Load(args[0])
			if err != nil {
				return err
			}

			rowMaps := make([]map[string]string, len(rows))
			for i, r := range rows {
				rowMaps[i] = r
			}
			contacts, skipped, err := contact.NormalizeAll(rowMaps, contact.Options{
				HzThreshold: cfg.Generation.HzThreshold,
			})
			if err != nil {
				return err
			}

			if len(contacts) > count {
				contacts = contacts[:count]
			}
			for i, c := range contacts {
				band := c.Band
				if band == "" {
					band = cfg.Bands.BandFor(c.FreqMHz)
				}
				fmt.Printf("Contact %d: %s  %s %sZ  %s MHz (%s)  %s\n",
					i+1, c.Call, c.DateDisplay(), c.TimeDisplay(), c.FreqDisplay(), band,
					cfg.ModeTables().Label(c.Mode, c.Submode))
			}
			if len(skipped) > 0 {
				fmt.Printf("%d rows skipped\n", len(skipped))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 3, "number of contacts to show")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent generation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Output.HistoryDB == "" {
				fmt.Println("History is disabled (output.history_db is empty).")
				return nil
			}

			s, err := history.Open(cfg.Output.HistoryDB)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			for _, r := range runs {
				fmt.Printf("%s  %s  %d cards, %d contacts (%d skipped)  %s -> %s\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Cards, r.Contacts, r.Skipped,
					r.CSVPath, r.OutputDir)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func serveCmd() *cobra.Command {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated cards for browser preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				dir = cfg.Output.DefaultDirectory
			}
			return preview.New(dir, addr, logger).Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "card directory (default from config)")
	return cmd
}
