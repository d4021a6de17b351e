package core

// # Error Codes Reference
//
// Technical errors are mapped to coded user messages so shops can quote the
// code to support. CSV import errors are the exception: their text already
// names the line and column at fault, so they are shown as they are with
// a CSV code attached.
//
//	DB001-DB007   database constraints and connectivity
//	VAL001-VAL003 request validation
//	FILE001-FILE005 upload handling
//	CSV001-CSV006 import file content
//	IMP001-IMP004 import processing
//	AUTH001-AUTH002 authentication
//	RATE001       throttling
//	ERR000        anything else; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/orcamentos/internal/budgetcsv"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// importErrors maps parser sentinels to codes. Messages come from the error.
var importErrors = []struct {
	err  error
	code string
}{
	{budgetcsv.ErrHeaderNotFound, "CSV001"},
	{budgetcsv.ErrEmptyFile, "CSV002"},
	{budgetcsv.ErrInvalidPrice, "CSV003"},
	{budgetcsv.ErrMissingRequiredField, "CSV004"},
	{budgetcsv.ErrNoValidRecords, "CSV005"},
	{budgetcsv.ErrMalformedRow, "CSV006"},
}

const importAction = "Fix the file and import it again; nothing was saved"

var errorPatterns = []errorPattern{
	// Database constraints
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Please try the import again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates check constraint",
		msg: UserMessage{
			Message: "A budget value is outside the allowed range",
			Action:  "Check prices and installments in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "invalid input syntax for type uuid",
		msg: UserMessage{
			Message: "Malformed identifier",
			Action:  "Reload the page and try again",
			Code:    "DB003",
		},
	},

	// Database connectivity
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// Request validation
	{
		pattern: "invalid owner id",
		msg: UserMessage{
			Message: "Your session does not identify a shop",
			Action:  "Sign in again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "Budget not found",
			Action:  "It may have been restored, deleted or belong to another account",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Reload the page and try again",
			Code:    "VAL003",
		},
	},

	// Upload handling
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the budgets into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty upload",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Download the template and fill in your budgets",
			Code:    "FILE005",
		},
	},

	// Import processing
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try importing a smaller file",
			Code:    "IMP003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "IMP004",
		},
	},

	// Authentication
	{
		pattern: "missing bearer token",
		msg: UserMessage{
			Message: "You are not signed in",
			Action:  "Sign in and try again",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid token",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Sign in again",
			Code:    "AUTH002",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Import file errors keep their own text. Other errors are matched against
// known patterns, falling back to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ie := range importErrors {
		if errors.Is(err, ie.err) {
			return UserMessage{Message: err.Error(), Action: importAction, Code: ie.code}
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
