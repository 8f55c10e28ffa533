package main

import (
	"bayesarima/pkg/models/bsarima"
)

const (
	SeriesSource = "data/us_change.csv"
	SeriesColumn = "Consumption"

	ClassicalParamsSource = "output/sarimax/sarimax_parameters.csv"
	ClassicalLabel        = "sarimax"

	DefaultPriorDir = "output/bayes_default"
	StrongPriorDir  = "output/bayes_strong"
	CompareDir      = "output/comparison"
	ArchivePath     = "output/runs.db"

	ChartFileName  = "comparison.png"
	ReportFileName = "comparison.md"
	ReportTitle    = "Bayesian vs. classical SARIMA estimates"

	Seed uint64 = 874310
)

var (
	ModelOrder    = bsarima.Order{P: 1, D: 0, Q: 3}
	SeasonalOrder = bsarima.SeasonalOrder{}

	DefaultPrior = bsarima.Prior{Location: 0, Scale: 0.5}
	StrongPrior  = bsarima.Prior{Location: 0.6, Scale: 0.2}

	DefaultPriorLabel = "default prior"
	StrongPriorLabel  = "strong prior"
)
