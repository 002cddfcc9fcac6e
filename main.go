package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/cytoterm/internal/util"
	"github.com/yumyai/cytoterm/logger"
	"github.com/yumyai/cytoterm/pkg/config"
	"github.com/yumyai/cytoterm/pkg/cytoband"
	ggdb "github.com/yumyai/cytoterm/pkg/db"
	"github.com/yumyai/cytoterm/pkg/handler"
	"github.com/yumyai/cytoterm/pkg/model"
	"github.com/yumyai/cytoterm/pkg/render"
)

const VERSION = "0.1.0"

var (
	cfgFile string
	cfg     *config.Config

	inputPath       string
	outputPath      string
	linkAcross      bool
	centromereLevel string
	chromosomeRoots bool
	siblingLinks    bool
	storePath       string
	listenAddr      string
	logLevel        string
	profileDir      string
)

var rootCmd = &cobra.Command{
	Use:           "cytoterm",
	Short:         "Build a cytogenetic band code system from a cytoband table",
	Version:       VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Try load env
		if err := godotenv.Load(); err != nil {
			logger.Debug("No .env found, using local environment")
		}

		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return err
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		applyFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logCfg, err := cfg.LoggerConfig()
		if err != nil {
			return err
		}
		return logger.InitLogger(logCfg)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a cytoband table into a CodeSystem JSON document",
	Long: `Convert a UCSC-style cytoband table into a CodeSystem JSON document.

Examples:
  cytoterm convert --input cytoBand.txt.gz --output cytoband.json
  cytoterm convert --input cytoBand.txt --link-across-centromere --centromere-levels all
  cytoterm convert --input cytoBand.txt --output - --store ./data/cytoterm.db`,
	RunE: runConvert,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion and concept lookup API",
	RunE:  runServe,
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <code>",
	Short: "Print a stored concept from the latest release",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "sqlite concept store")

	convertCmd.Flags().StringVarP(&inputPath, "input", "i", "", "cytoband table, gzip when it ends in .gz")
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "output JSON file, - for stdout")
	convertCmd.Flags().BoolVar(&linkAcross, "link-across-centromere", false, "link p and q arms across the centromere")
	convertCmd.Flags().StringVar(&centromereLevel, "centromere-levels", "", "level to link at: arm, region, band, subBand or all")
	convertCmd.Flags().BoolVar(&chromosomeRoots, "chromosome-roots", false, "emit a chromosome concept above both arms")
	convertCmd.Flags().BoolVar(&siblingLinks, "sibling-links", false, "emit prev/next properties in genomic order")
	convertCmd.Flags().StringVar(&profileDir, "profile", "", "write a CPU profile to this directory")
	convertCmd.MarkFlagRequired("input")

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address")
	serveCmd.Flags().BoolVar(&linkAcross, "link-across-centromere", false, "default for the link query parameter")
	serveCmd.Flags().StringVar(&centromereLevel, "centromere-levels", "", "default link level")

	rootCmd.AddCommand(convertCmd, serveCmd, lookupCmd)
}

// applyFlags overrides file and environment settings with flags that were set.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("store") {
		cfg.Store = storePath
	}
	if flags.Changed("listen") {
		cfg.Listen = listenAddr
	}
	if flags.Changed("link-across-centromere") {
		cfg.Link.Enabled = linkAcross
	}
	if flags.Changed("centromere-levels") {
		cfg.Link.Levels = centromereLevel
	}
	if flags.Changed("chromosome-roots") {
		cfg.ChromosomeRoots = chromosomeRoots
	}
	if flags.Changed("sibling-links") {
		cfg.SiblingLinks = siblingLinks
	}
}

func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return struct {
		io.Reader
		io.Closer
	}{gz, f}, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	if profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(profileDir), profile.Quiet).Stop()
	}

	opts, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	start := time.Now()
	result, err := cytoband.RunReader(in, opts)
	if err != nil {
		return fmt.Errorf("convert %s: %w", inputPath, err)
	}

	encoded, err := result.Document.Encode()
	if err != nil {
		return err
	}
	digest := util.Digest(encoded)

	report := cmd.OutOrStdout()
	if outputPath == "-" || outputPath == "" {
		report = cmd.ErrOrStderr()
		if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
			return err
		}
	} else {
		if err := util.EnsureParentDir(outputPath); err != nil {
			return err
		}
		if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
			return err
		}
	}

	for _, w := range result.Warnings {
		logger.Warn("Link coverage", zap.String("warning", w.String()))
	}

	data := render.SummaryData{
		Summary:  result.Summary,
		Warnings: result.Warnings,
		Output:   outputPath,
		Digest:   digest,
	}

	if cmd.Flags().Changed("store") {
		store, err := ggdb.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()

		rel, err := store.SaveDocument(cmd.Context(), result.Document, digest)
		if err != nil {
			return fmt.Errorf("persist: %w", err)
		}
		data.Release = rel.ID
		logger.Info("Stored release", zap.String("release", rel.ID), zap.String("store", cfg.Store))
	}

	logger.Info("Converted cytobands",
		zap.String("input", inputPath),
		zap.Int("concepts", result.Summary.Concepts),
		zap.Duration("took", time.Since(start)),
	)
	return render.RenderSummary(report, data)
}

func runServe(cmd *cobra.Command, args []string) error {
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}

	store, err := ggdb.Open(cmd.Context(), cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	dbctx := &handler.DBContext{
		Store:    store,
		Defaults: opts,
		Logger:   logger.L(),
	}

	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Open database on", zap.String("DB_LOC", cfg.Store))

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           NewRouter(dbctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown", zap.Error(err))
		}
	}()

	logger.Info("Server starting on", zap.String("addr", cfg.Listen))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error starting server: %w", err)
	}
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	store, err := ggdb.Open(cmd.Context(), cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	concept, err := model.GetConcept(cmd.Context(), store.DB(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(concept)
}

func main() {
	defer logger.Sync() // Make sure that the buffered is flushed.

	if err := rootCmd.Execute(); err != nil {
		logger.Error("cytoterm failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		logger.Sync()
		os.Exit(1)
	}
}
