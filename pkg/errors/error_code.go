package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInsufficientData     ErrorCode = 103
	ErrCodeLengthMismatch       ErrorCode = 104
	ErrCodeInvalidType          ErrorCode = 105
	ErrCodeInvalidTimeframe     ErrorCode = 106
	ErrCodeInvalidSettingsFile  ErrorCode = 107

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeColumnNotFound        ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError  ErrorCode = 400
	ErrCodeStrategyRuntimeError ErrorCode = 401

	// Trading errors (500-599)
	ErrCodeInvalidOrder      ErrorCode = 500
	ErrCodeOrderFailed       ErrorCode = 501
	ErrCodeInvalidStopLoss   ErrorCode = 502
	ErrCodeInvalidTakeProfit ErrorCode = 503
	ErrCodePositionSizing    ErrorCode = 504

	// Market data errors (600-699)
	ErrCodeMarketDataFetchFailed ErrorCode = 600
	ErrCodeMarketDataWriteFailed ErrorCode = 601
	ErrCodeMarketDataParseFailed ErrorCode = 602
	ErrCodeInvalidProvider       ErrorCode = 603

	// Persistence errors (700-799)
	ErrCodeTableWriteFailed ErrorCode = 700
)
