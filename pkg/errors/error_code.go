package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidConfiguration ErrorCode = 100
	ErrCodeInvalidDateRange     ErrorCode = 101
	ErrCodeInvalidBalance       ErrorCode = 102
	ErrCodeInvalidRiskPercent   ErrorCode = 103
	ErrCodeInvalidPositionSize  ErrorCode = 104
	ErrCodeInvalidPeriod        ErrorCode = 105
	ErrCodeMissingParameter     ErrorCode = 106
	ErrCodeInvalidParameter     ErrorCode = 107

	// Data errors (200-299)
	ErrCodeInvalidCandle         ErrorCode = 200
	ErrCodeNonMonotonicSeries    ErrorCode = 201
	ErrCodeDataSourceUnavailable ErrorCode = 202
	ErrCodeQueryFailed           ErrorCode = 203
	ErrCodeNoDataFound           ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound  ErrorCode = 300
	ErrCodeIndicatorDuplicate ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyNotFound   ErrorCode = 400
	ErrCodeStrategyDuplicate  ErrorCode = 401
	ErrCodeStrategyEvaluation ErrorCode = 402

	// Backtest errors (600-699)
	ErrCodeEngineNotInitialized ErrorCode = 600
	ErrCodeNoStrategyLoaded     ErrorCode = 601
	ErrCodeNoDataSourceSet      ErrorCode = 602

	// Market data errors (700-799)
	ErrCodeDownloadFailed ErrorCode = 700
	ErrCodeWriteFailed    ErrorCode = 701
)
