package apperror

var messages = map[Code]string{
	CodeRequiredField:   "required field is missing",
	CodeInvalidInput:    "invalid input provided",
	CodeValidationError: "validation failed",

	CodeConfigurationError: "configuration error",
	CodeVenueNotConfigured: "venue has no usable endpoint",
	CodeStrategyNotFound:   "quote strategy not registered",

	CodeExternalServiceError: "external service error",
	CodeServiceTimeout:       "service request timed out",
	CodeRateLimitExceeded:    "rate limit exceeded",
	CodeUnexpectedStatus:     "unexpected HTTP status",

	CodeInternalError: "internal error",
	CodeUnknownError:  "unknown error",

	CodeOrderbookFetchFailed: "failed to fetch order book",
	CodeInvalidOrderbook:     "order book response has unexpected shape",

	CodeQuoteFetchFailed:  "failed to fetch DEX quote",
	CodeInvalidQuote:      "DEX quote response has unexpected shape",
	CodeQuoteBuildFailed:  "failed to build DEX quote request",
	CodeZeroAmount:        "amount in base units is zero",
	CodeSigningFailed:     "failed to sign vendor request",
	CodeContractCallError: "contract call reverted or failed",

	CodeEthereumRPCError:  "ethereum RPC error",
	CodeGasPriceFailed:    "failed to fetch gas price",
	CodeNativePriceFailed: "failed to resolve native asset price",
	CodeFxRateFailed:      "failed to fetch FX rate",

	CodeInvalidFeeValue:  "fee value is not numeric",
	CodeFeeSyncFailed:    "failed to sync venue fees",
	CodeReporterFailed:   "failed to publish result",
	CodeCircuitOpen:      "circuit breaker is open",
	CodeInvalidToken:     "invalid token descriptor",
	CodeTokenFileInvalid: "token file could not be parsed",
}
