package apperror

// Code represents a unique error code for the engine.
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeVenueNotConfigured Code = "VENUE_NOT_CONFIGURED"
	CodeStrategyNotFound   Code = "STRATEGY_NOT_FOUND"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"
	CodeUnexpectedStatus     Code = "UNEXPECTED_STATUS"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Engine error codes
const (
	// CEX order books
	CodeOrderbookFetchFailed Code = "ORDERBOOK_FETCH_FAILED"
	CodeInvalidOrderbook     Code = "INVALID_ORDERBOOK"

	// DEX quotes
	CodeQuoteFetchFailed  Code = "QUOTE_FETCH_FAILED"
	CodeInvalidQuote      Code = "INVALID_QUOTE"
	CodeQuoteBuildFailed  Code = "QUOTE_BUILD_FAILED"
	CodeZeroAmount        Code = "ZERO_AMOUNT"
	CodeSigningFailed     Code = "SIGNING_FAILED"
	CodeContractCallError Code = "CONTRACT_CALL_ERROR"

	// Market data
	CodeEthereumRPCError  Code = "ETHEREUM_RPC_ERROR"
	CodeGasPriceFailed    Code = "GAS_PRICE_FAILED"
	CodeNativePriceFailed Code = "NATIVE_PRICE_FAILED"
	CodeFxRateFailed      Code = "FX_RATE_FAILED"

	// Fees
	CodeInvalidFeeValue  Code = "INVALID_FEE_VALUE"
	CodeFeeSyncFailed    Code = "FEE_SYNC_FAILED"
	CodeReporterFailed   Code = "REPORTER_FAILED"
	CodeCircuitOpen      Code = "CIRCUIT_OPEN"
	CodeInvalidToken     Code = "INVALID_TOKEN"
	CodeTokenFileInvalid Code = "TOKEN_FILE_INVALID"
)

// Kind groups codes into the engine's error taxonomy.
type Kind string

const (
	KindConfig   Kind = "config"
	KindNetwork  Kind = "network"
	KindParse    Kind = "parse"
	KindDomain   Kind = "domain"
	KindInternal Kind = "internal"
)

var kinds = map[Code]Kind{
	CodeConfigurationError: KindConfig,
	CodeVenueNotConfigured: KindConfig,
	CodeStrategyNotFound:   KindConfig,
	CodeQuoteBuildFailed:   KindConfig,
	CodeInvalidFeeValue:    KindConfig,
	CodeTokenFileInvalid:   KindConfig,

	CodeExternalServiceError: KindNetwork,
	CodeServiceTimeout:       KindNetwork,
	CodeRateLimitExceeded:    KindNetwork,
	CodeUnexpectedStatus:     KindNetwork,
	CodeOrderbookFetchFailed: KindNetwork,
	CodeQuoteFetchFailed:     KindNetwork,
	CodeEthereumRPCError:     KindNetwork,
	CodeGasPriceFailed:       KindNetwork,
	CodeNativePriceFailed:    KindNetwork,
	CodeFxRateFailed:         KindNetwork,
	CodeFeeSyncFailed:        KindNetwork,
	CodeCircuitOpen:          KindNetwork,
	CodeContractCallError:    KindNetwork,

	CodeInvalidOrderbook: KindParse,
	CodeInvalidQuote:     KindParse,

	CodeZeroAmount:   KindDomain,
	CodeInvalidToken: KindDomain,
	CodeInvalidInput: KindDomain,
}
