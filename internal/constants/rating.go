package constants

import "time"

const (
	MinRating     = 2.0
	MaxRating     = 8.0
	DefaultRating = 3.5

	ExpectedScale = 1.0
	DeltaDivisor  = 400.0

	LopsidedGapThreshold = 1.0
	LopsidedDiscount     = 0.5

	HighLevelThreshold = 5.0
	HighLevelDamping   = 0.15
	HighLevelFloor     = 0.5

	MaxRatedGap = 1.5
)

const (
	KFactorNew         = 64.0
	KFactorDeveloping  = 40.0
	KFactorEstablished = 24.0

	ReliabilityNewBelow        = 0.3
	ReliabilityDevelopingBelow = 0.7
)

const (
	DepthWeight   = 0.5
	BreadthWeight = 0.3
	RecencyWeight = 0.2

	DepthCap   = 30
	BreadthCap = 15

	FreshnessWindow = 30 * 24 * time.Hour
	RecencyDecay    = 60 * 24 * time.Hour
	RecencyFloor    = 0.25
)
