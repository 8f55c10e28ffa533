package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bayesarima/internal/dbg"
	"bayesarima/internal/store"
	"bayesarima/pkg/compare"
	"bayesarima/pkg/data/duckdb"
	"bayesarima/pkg/models/bsarima"
	"bayesarima/pkg/results"
	"bayesarima/pkg/timeseries"
)

func main() {
	logger := dbg.NewLogger(false)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	defer logger.Info("done")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reader := duckdb.NewReader()
	if err := reader.Connect(); err != nil {
		logger.Fatal("error opening series reader", zap.Error(err))
	}
	defer reader.Close()

	series, err := reader.LoadColumn(ctx, SeriesSource, SeriesColumn)
	if err != nil {
		logger.Fatal("error loading series", zap.Error(err))
	}
	logger.Info("series loaded",
		zap.String("source", SeriesSource),
		zap.String("column", SeriesColumn),
		zap.Int("observations", series.Len()))

	archive, err := store.Open(ArchivePath)
	if err != nil {
		logger.Fatal("error opening run archive", zap.Error(err))
	}
	defer archive.Close()

	runner := results.NewRunner(logger)

	defaultRun := fitAndArchive(ctx, logger, runner, archive, series, DefaultPrior, DefaultPriorDir)
	strongRun := fitAndArchive(ctx, logger, runner, archive, series, StrongPrior, StrongPriorDir)

	classical, err := compare.LoadClassicalParams(ClassicalParamsSource)
	if err != nil {
		logger.Fatal("error loading classical parameter table", zap.Error(err))
	}

	classical = compare.ReorderRows(classical)
	if err := classical.VarianceToScale(); err != nil {
		logger.Fatal("error aligning classical parameters", zap.Error(err))
	}

	table, err := compare.BuildTable(classical, ClassicalLabel, []compare.BayesianColumn{
		{Label: DefaultPriorLabel, Table: defaultRun.Table},
		{Label: StrongPriorLabel, Table: strongRun.Table},
	})
	if err != nil {
		logger.Fatal("error building comparison table", zap.Error(err))
	}

	if err := results.EnsureDir(CompareDir); err != nil {
		logger.Fatal("error creating comparison directory", zap.Error(err))
	}

	chartPath := filepath.Join(CompareDir, ChartFileName)
	if err := compare.RenderBarChart(table, ReportTitle, chartPath); err != nil {
		logger.Fatal("error rendering comparison chart", zap.Error(err))
	}

	conclusion, err := compare.Conclusion(table)
	if err != nil {
		logger.Fatal("error drawing conclusion", zap.Error(err))
	}

	reportPath := filepath.Join(CompareDir, ReportFileName)
	if err := compare.WriteMarkdownReport(reportPath, ReportTitle, ChartFileName, conclusion); err != nil {
		logger.Fatal("error writing comparison report", zap.Error(err))
	}

	logger.Info("comparison written",
		zap.String("chart", chartPath),
		zap.String("report", reportPath),
		zap.String("conclusion", conclusion))
}

func fitAndArchive(
	ctx context.Context,
	logger *zap.Logger,
	runner *results.Runner,
	archive *store.Store,
	series *timeseries.Series,
	prior bsarima.Prior,
	outDir string) *results.RunSummary {

	run, err := runner.Run(ctx, series, ModelOrder, SeasonalOrder, prior, outDir, Seed)
	if err != nil {
		logger.Fatal("error running bayesian fit",
			zap.Float64("prior_location", prior.Location),
			zap.Float64("prior_scale", prior.Scale),
			zap.Error(err))
	}

	rec := store.Record{
		RunID:         run.RunID,
		CreatedAt:     time.Now(),
		Series:        SeriesColumn,
		Observations:  series.Len(),
		Model:         fmt.Sprintf("BSARIMA(%d,%d,%d)", ModelOrder.P, ModelOrder.D, ModelOrder.Q),
		PriorLocation: prior.Location,
		PriorScale:    prior.Scale,
		Seed:          Seed,
		WAIC:          run.WAIC,
	}
	if err := archive.ArchiveRun(rec, run.Fit.Summary()); err != nil {
		logger.Fatal("error archiving run", zap.Error(err))
	}
	return run
}
