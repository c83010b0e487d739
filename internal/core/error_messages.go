package core

// error_messages.go maps technical errors to user-friendly messages with
// codes operators can quote to support staff.
//
// Codes by category:
//
//	FILE001 - Empty file          FILE002 - Invalid CSV
//	FILE003 - Header not found
//	DB001   - Duplicate record    DB002 - Connection trouble
//	IMP001  - System busy         IMP002 - Request cancelled
//	IMP003  - Unknown upload      ERR000 - Fallback
//
// Patterns are matched case-insensitively with strings.Contains; the
// first match wins, so specific patterns sit before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage is a user-facing rendering of an internal error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with a header row and data rows",
			Code:    "FILE001",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "The file is not a valid CSV",
			Action:  "Save the file as comma-separated UTF-8 and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "header not found",
		msg: UserMessage{
			Message: "No recognizable column headers were found",
			Action:  "The first row must name columns like title, price, city",
			Code:    "FILE003",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A property with this identity already exists",
			Action:  "Remove duplicate rows and retry the import",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The database is unreachable",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "Too many imports are running right now",
			Action:  "Wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "IMP002",
		},
	},
	{
		pattern: "upload not found",
		msg: UserMessage{
			Message: "No import with that ID exists",
			Action:  "Check the upload ID returned when the import ran",
			Code:    "IMP003",
		},
	},
}

// MapError converts err to a UserMessage. Unmatched errors get the
// generic ERR000 envelope; the technical text stays in the logs only.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	text := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(text, p.pattern) {
			return p.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}

// MapErrorWithDetail is MapError plus the technical detail appended,
// used by the CLI where the operator is also the support staff.
func MapErrorWithDetail(err error) string {
	m := MapError(err)
	return fmt.Sprintf("[%s] %s: %v", m.Code, m.Message, err)
}
