package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidType          ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeInvalidBar           ErrorCode = 105
	ErrCodeNonMonotonicTime     ErrorCode = 106
	ErrCodeInvalidInterval      ErrorCode = 107
	ErrCodeInvalidThreshold     ErrorCode = 108

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 203
	ErrCodeDataParseFailed       ErrorCode = 204
	ErrCodeUnsupportedFormat     ErrorCode = 205

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError  ErrorCode = 400
	ErrCodeStrategyRuntimeError ErrorCode = 401
	ErrCodeUnsupportedStrategy  ErrorCode = 402
	ErrCodeModelLoadFailed      ErrorCode = 403
	ErrCodeModelInferenceFailed ErrorCode = 404

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed  ErrorCode = 600
	ErrCodeBacktestConfigError ErrorCode = 601
	ErrCodeLedgerOutOfOrder    ErrorCode = 602
	ErrCodeNoStrategy          ErrorCode = 603

	// Grid errors (700-799)
	ErrCodeGridEmpty       ErrorCode = 700
	ErrCodeGridRunFailed   ErrorCode = 701
	ErrCodeUnknownGridParm ErrorCode = 702

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
