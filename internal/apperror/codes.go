package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Scanner-specific error codes
const (
	// Market data ingress
	CodeBadSymbol   Code = "BAD_SYMBOL"
	CodeQueueFull   Code = "QUEUE_FULL"
	CodeInvalidTick Code = "INVALID_TICK"

	// Node interning
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"
	CodeUnknownVenue     Code = "UNKNOWN_VENUE"

	// Detection
	CodeSpuriousCycle Code = "SPURIOUS_CYCLE"

	// Publication
	CodeSinkFailure       Code = "SINK_FAILURE"
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"

	// Feeds
	CodeFeedConnectionFailed Code = "FEED_CONNECTION_FAILED"
	CodeFeedSubscribeFailed  Code = "FEED_SUBSCRIBE_FAILED"
	CodeFeedParseError       Code = "FEED_PARSE_ERROR"
	CodeWebSocketClosed      Code = "WEBSOCKET_CLOSED"
)
