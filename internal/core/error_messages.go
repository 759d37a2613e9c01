package core

// error_messages.go maps technical errors to user-facing messages.
//
// Each message carries a code users can quote when asking for help:
//
//	VAL002  Invalid number in a numeric column
//	VAL003  Required field is empty
//	VAL004  Required column is missing
//	FILE001 File too large
//	FILE002 Invalid CSV
//	FILE003 Invalid spreadsheet
//	FILE004 No file selected
//	FILE005 Empty file
//	FILE006 Unsupported file type
//	HIST001 History store unavailable
//	ING001  Another ingestion is running
//	ING002  Request cancelled
//	ING003  Request timed out
//	ERR000  Anything else
//
// Structural validation errors are mapped by type so the message can name
// the offending column. Everything else is matched case-insensitively against
// the pattern table; the first match wins.

import (
	"errors"
	"fmt"
	"strings"
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

var errorPatterns = []errorPattern{
	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "File is not a readable spreadsheet",
			Action:  "Re-save the workbook as .xlsx or export it as CSV",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "File type is not supported",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "FILE006",
		},
	},

	// History
	{
		pattern: "history store unavailable",
		msg: UserMessage{
			Message: "Upload history is temporarily unavailable",
			Action:  "Your data was still processed. Please try again later",
			Code:    "HIST001",
		},
	},

	// Ingestion
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "Another file is being processed",
			Action:  "Please wait a moment and try again",
			Code:    "ING001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "ING002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "ING003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	err := &MissingColumnError{Columns: []string{"Pressure"}}
//	msg := MapError(err)
//	// msg.Code == "VAL004"
//	// msg.Message == "Required column is missing: Pressure"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var mc *MissingColumnError
	if errors.As(err, &mc) {
		return UserMessage{
			Message: "Required column is missing: " + strings.Join(mc.Columns, ", "),
			Action:  "Check that the header row contains Equipment Name, Type, Pressure, Temperature and Flowrate",
			Code:    "VAL004",
		}
	}

	var mr *MalformedRowError
	if errors.As(err, &mr) {
		if mr.Value == "" {
			return UserMessage{
				Message: fmt.Sprintf("Column %q is empty on line %d", mr.Column, mr.Line),
				Action:  "Ensure every row has a value in each required column",
				Code:    "VAL003",
			}
		}
		return UserMessage{
			Message: fmt.Sprintf("Column %q has a non-numeric value %q on line %d", mr.Column, mr.Value, mr.Line),
			Action:  "Use plain decimal numbers without units or symbols",
			Code:    "VAL002",
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
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// IsValidationError reports whether err is a structural input error the
// user can fix by selecting a corrected file.
func IsValidationError(err error) bool {
	var mc *MissingColumnError
	var mr *MalformedRowError
	return errors.As(err, &mc) || errors.As(err, &mr)
}
