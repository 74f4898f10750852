package config

// Application constants for the survey pain-point analyzer
const (
	// Application Info
	AppName    = "Survey Pulse"
	AppVersion = "1.2.0"

	// Column name prefixes recognized in the survey sheet
	PrefixImportance   = "IMP_"
	PrefixSatisfaction = "SAT_"
	PrefixProfiling    = "PR1"
	PrefixExcluded     = "X_"

	// Rating scale bounds after normalization
	RatingScaleMin = 1
	RatingScaleMax = 5

	// Metric index space in the questionnaire
	MetricIndexMin = 1
	MetricIndexMax = 106

	// Binary indicator sentinels as they appear in the raw export
	BinarySelected    = "selected"
	BinaryNotSelected = "not selected"

	// NeverSentinel is the bottom level of the frequency scales. A skipped
	// frequency question means the respondent never uses the service, so
	// missing cells in those columns impute to this level's rank instead of
	// the column median.
	NeverSentinel = "Never"

	// Metric selection defaults
	DefaultImportanceThreshold = 3.5
	DefaultDisplayTopN         = 15
	DefaultModelTopN           = 5

	// Segmentation defaults
	DefaultMinClusters   = 2
	DefaultMaxClusters   = 10
	DefaultKMeansMaxIter = 100

	// Regression defaults
	DefaultCVFolds        = 10
	DefaultLambdaCount    = 100
	DefaultLambdaMinRatio = 1e-3
	DefaultTopPredictors  = 3

	// Single seed shared by the cluster-count search, the final cluster fit,
	// and the cross-validation fold shuffles
	DefaultRandomSeed = 42

	// File paths (relative to working directory)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultReportsDir = "data/reports"
	DefaultChartsDir  = "data/charts"
)

// ColumnRole identifies what a survey column contributes to the pipeline.
type ColumnRole string

const (
	RoleImportance   ColumnRole = "importance"
	RoleSatisfaction ColumnRole = "satisfaction"
	RoleProfiling    ColumnRole = "profiling"
	RoleExcluded     ColumnRole = "excluded"
	RoleDemographic  ColumnRole = "demographic"
)

// PrefixRoles maps column-name prefixes to their pipeline role. Columns that
// match none of the prefixes (and are not the ID column) are demographic.
// Longer prefixes are matched first so an explicit entry can shadow a shorter
// one.
var PrefixRoles = map[string]ColumnRole{
	PrefixImportance:   RoleImportance,
	PrefixSatisfaction: RoleSatisfaction,
	PrefixProfiling:    RoleProfiling,
	PrefixExcluded:     RoleExcluded,
}
