package apperror

// messages maps error codes to their default human-readable messages.
var messages = map[Code]string{
	CodeInvalidInput:       "invalid input",
	CodeInvalidState:       "invalid state",
	CodeNotFound:           "not found",
	CodeConfigurationError: "configuration error",
	CodeInternalError:      "internal error",
	CodeUnknownError:       "unknown error",

	CodeBadSymbol:   "symbol cannot be parsed into BASE/QUOTE",
	CodeQueueFull:   "ingress queue is full",
	CodeInvalidTick: "tick has non-positive bid or ask",

	CodeCapacityExceeded: "node index is at maximum capacity",
	CodeUnknownVenue:     "venue id is out of range",

	CodeSpuriousCycle: "extracted cycle failed validation",

	CodeSinkFailure:       "opportunity sink failed",
	CodeRateLimitExceeded: "opportunity rate limit exceeded",

	CodeFeedConnectionFailed: "feed connection failed",
	CodeFeedSubscribeFailed:  "feed subscription failed",
	CodeFeedParseError:       "feed message could not be parsed",
	CodeWebSocketClosed:      "websocket connection closed",
}
