package constants

// Diminishing returns bands for equipment bonuses.
const (
	DRFullBandCeiling    = 60.0
	DRReducedBandCeiling = 80.0
	DRReducedRate        = 0.7
	DRMinimalRate        = 0.4
)

// Energy and fatigue.
const (
	MaxEnergy              = 100.0
	FatigueMildThreshold   = 70.0
	FatigueModThreshold    = 40.0
	FatigueSevereThreshold = 20.0
	FatigueMildPenalty     = 0.05
	FatigueModPenalty      = 0.12
	FatigueSeverePenalty   = 0.20

	BaseDrainPerShot     = 0.15
	LongRallyDrainBonus  = 0.10
	LongRallyThreshold   = 5
	StaminaDrainFactor   = 0.005
	MinDrainPerPoint     = 0.1
	RestBetweenGamesGain = 10.0
)

// Momentum. Index is the streak length.
var (
	MomentumBonusTable   = [...]float64{0, 0, 0.02, 0.04, 0.06, 0.08, 0.10}
	MomentumPenaltyTable = [...]float64{0, 0, -0.01, -0.02, -0.03, -0.04}
)

const (
	MomentumStreakReportMin = 2
	StreakAlertMin          = 3
)

// Clutch points.
const (
	ClutchWindow     = 2
	ClutchPivot      = 50.0
	ClutchModDivisor = 1000.0
)

// Serve phase.
const (
	AceBase      = 0.05
	AceStatScale = 0.002
	AceMin       = 0.01
	AceMax       = 0.25
)

// Dink phase (doubles only).
const (
	DinkMinShots         = 2
	DinkMaxShots         = 8
	DinkWinnerBase       = 0.03
	DinkWinnerScale      = 0.002
	DinkWinnerMin        = 0.005
	DinkWinnerMax        = 0.15
	DinkErrorBase        = 0.04
	DinkErrorScale       = 0.0015
	DinkErrorMin         = 0.005
	DinkErrorMax         = 0.15
	DinkForcedErrorFixed = 0.02
)

// Rally phase.
const (
	StatPivot = 50.0

	RallyBaseLength = 5
	RallyMinLength  = 6
	RallyMaxLength  = 15

	WinnerBase      = 0.08
	WinnerScale     = 0.004
	WinnerShotBonus = 0.003
	WinnerMin       = 0.02
	WinnerMax       = 0.40

	UnforcedErrorBase        = 0.06
	UnforcedErrorScale       = 0.002
	UnforcedErrorShotPenalty = 0.002
	UnforcedErrorMin         = 0.01
	UnforcedErrorMax         = 0.30

	ForcedErrorBase  = 0.05
	ForcedErrorScale = 0.003
	ForcedErrorMin   = 0.01
	ForcedErrorMax   = 0.30

	CapFlipMin = 0.05
	CapFlipMax = 0.95
)

// Match flow.
const (
	ServeRotationInterval = 2
	SecondsPerShot        = 2
	SecondsBetweenPoints  = 15
	SecondsBetweenGames   = 120
)

// In-match actions.
const (
	TimeoutStreakThreshold = 3
	TimeoutEnergyRestore   = 15.0
	MaxConsumablesPerMatch = 3
	HookBaseChance         = 0.15
	HookPerReputation      = 0.002
	HookMaxChance          = 0.5
	HookSuccessPenalty     = 2
	HookCaughtPenalty      = 5
)

// Rewards.
const (
	BaseXP   = 50
	WinBonus = 50
)
