package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable failure taxonomy exposed to clients.
type ErrorCode string

const (
	CodeMissingInput     ErrorCode = "MISSING_INPUT"
	CodeInputTooShort    ErrorCode = "INPUT_TOO_SHORT"
	CodeInputTooLong     ErrorCode = "INPUT_TOO_LONG"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"
	CodeConfigError      ErrorCode = "CONFIG_ERROR"
	CodeAIAuthError      ErrorCode = "AI_AUTH_ERROR"
	CodeAIRateLimited    ErrorCode = "AI_RATE_LIMITED"
	CodeAIError          ErrorCode = "AI_ERROR"
	CodeAIEmptyResponse  ErrorCode = "AI_EMPTY_RESPONSE"
	CodeAIParseError     ErrorCode = "AI_PARSE_ERROR"
	CodeNetworkError     ErrorCode = "NETWORK_ERROR"
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

const genericUserMessage = "Something went wrong. Please try again."

var userMessages = map[ErrorCode]string{
	CodeMissingInput:     "Please enter clinical documentation before submitting.",
	CodeInputTooShort:    "Please provide more detail about the clinical encounter.",
	CodeInputTooLong:     "Please shorten the clinical documentation. You can summarize the key procedure details.",
	CodeRateLimited:      "Please wait a moment before submitting another request.",
	CodeConfigError:      "The service is not properly configured. Please contact support.",
	CodeAIAuthError:      "The service is experiencing a configuration issue. Please contact support.",
	CodeAIRateLimited:    "Our AI service is temporarily busy. Please try again in a few seconds.",
	CodeAIError:          "Our AI service is temporarily unavailable. Please try again.",
	CodeAIEmptyResponse:  "The AI did not return a result. Please try rephrasing your input.",
	CodeAIParseError:     "The AI returned an unexpected format. Please try again.",
	CodeNetworkError:     "We could not reach our AI service. Please check your connection and try again.",
	CodeMethodNotAllowed: genericUserMessage,
	CodeInternalError:    genericUserMessage,
}

// UserMessage returns the display-safe message for a code.
func UserMessage(code ErrorCode) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return genericUserMessage
}

// CodingError is a classified pipeline failure. Message is diagnostic and meant for
// logs; UserMessage is safe to show to the coder.
type CodingError struct {
	Code        ErrorCode
	Message     string
	UserMessage string
	Err         error
}

func (e *CodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodingError) Unwrap() error {
	return e.Err
}

// NewCodingError creates a CodingError carrying the standard user message for code.
func NewCodingError(code ErrorCode, message string) *CodingError {
	return &CodingError{Code: code, Message: message, UserMessage: UserMessage(code)}
}

// WrapCodingError is NewCodingError with an underlying cause attached.
func WrapCodingError(code ErrorCode, message string, err error) *CodingError {
	ce := NewCodingError(code, message)
	ce.Err = err
	return ce
}

// AsCodingError extracts a CodingError from err, classifying anything else as internal.
func AsCodingError(err error) *CodingError {
	var ce *CodingError
	if errors.As(err, &ce) {
		return ce
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return WrapCodingError(CodeInternalError, msg, err)
}
