package main

import (
	"bayesarima/pkg/models/sarimax"
)

const (
	SeriesSource = "data/us_change.csv"
	SeriesColumn = "Consumption"

	OutputDir       = "output/sarimax"
	ParamsFileName  = "sarimax_parameters.csv"
	SummaryFileName = "sarimax_summary.md"

	ForecastSteps = 8
)

var (
	ModelOrder    = sarimax.Order{P: 1, D: 0, Q: 3}
	SeasonalOrder = sarimax.SeasonalOrder{}
)
