package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"bayesarima/internal/dbg"
	"bayesarima/pkg/data/duckdb"
	"bayesarima/pkg/models/sarimax"
	"bayesarima/pkg/results"
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

	model, err := sarimax.NewModel(ModelOrder, SeasonalOrder, sarimax.WithConstant(true))
	if err != nil {
		logger.Fatal("error building model", zap.Error(err))
	}

	if err := model.Fit(series); err != nil {
		logger.Fatal("error fitting model", zap.Error(err))
	}
	diag := model.Diagnostics()
	logger.Info("model fitted",
		zap.Float64("log_likelihood", diag.LogLikelihood),
		zap.Float64("aic", diag.AIC),
		zap.Float64("bic", diag.BIC))

	if err := results.EnsureDir(OutputDir); err != nil {
		logger.Fatal("error creating output directory", zap.Error(err))
	}

	paramsPath := filepath.Join(OutputDir, ParamsFileName)
	if err := writeParams(model, paramsPath); err != nil {
		logger.Fatal("error writing parameter table", zap.Error(err))
	}

	summaryPath := filepath.Join(OutputDir, SummaryFileName)
	if err := writeSummary(model, summaryPath); err != nil {
		logger.Fatal("error writing summary", zap.Error(err))
	}

	logger.Info("results written",
		zap.String("params", paramsPath),
		zap.String("summary", summaryPath))
}

// writeParams stores the point estimates as a two-column table keyed by
// parameter name, the layout the comparison driver reads back.
func writeParams(model *sarimax.Model, path string) error {
	names := model.ParamNames()
	values := model.Params()

	table := results.NewTable(names, []string{"params"})
	for i, v := range values {
		table.Set(i, 0, v)
	}
	return table.WriteCSV(path, "param_names")
}

func writeSummary(model *sarimax.Model, path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## SARIMAX fit: %s %s\n\n```\n", SeriesColumn, SeriesSource)
	b.WriteString(model.Summary())
	b.WriteString("```\n")

	forecasts, err := model.Forecast(ForecastSteps)
	if err != nil {
		return err
	}
	b.WriteString("\nForecast:\n\n```\n")
	for i, f := range forecasts {
		fmt.Fprintf(&b, "t+%-2d %10.4f\n", i+1, f)
	}
	b.WriteString("```\n")

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
