package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are matched case-insensitively with strings.Contains. The
// first match wins, so specific patterns come before general ones.
//
// Codes can be quoted when reporting a problem.
//
// Content Errors (CSV001-CSV099)
//
//	CSV001 - Unterminated quote: a quoted field is never closed
//	         Patterns: "quoted field unterminated"
//
//	CSV002 - Malformed quote: text follows the closing quote of a field
//	         Patterns: "trailing quote on quoted field is malformed"
//
//	CSV003 - Unreadable content: any other parse failure
//	         Patterns: "csv parse failed"
//
// Header Errors (HDR001-HDR099)
//
//	HDR001 - No header row: headers are written but none is set
//	         Patterns: "header row was null"
//
// Host Errors (BRG001-BRG099)
//
//	BRG001 - Host gone: the host connection closed
//	         Patterns: "host connection closed"
//
//	BRG002 - Unknown command: the host sent a command the panel does not know
//	         Patterns: "unknown host command"
//
// Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid body: the request body is not valid JSON
//	REQ002 - Body too large
//	REQ003 - Request cancelled
//	REQ004 - Request timed out
//
// Default Error (ERR000)
//
// Fallback when no pattern matches. The technical error is in the logs.
var errorPatterns = []errorPattern{
	{
		pattern: "quoted field unterminated",
		msg: UserMessage{
			Message: "A quoted field is never closed",
			Action:  "Add the missing closing quote or change the quote character in the read options",
			Code:    "CSV001",
		},
	},
	{
		pattern: "trailing quote on quoted field is malformed",
		msg: UserMessage{
			Message: "A quoted field has text after its closing quote",
			Action:  "Quote the whole field or escape the inner quote",
			Code:    "CSV002",
		},
	},
	{
		pattern: "csv parse failed",
		msg: UserMessage{
			Message: "The content could not be read as CSV",
			Action:  "Check the delimiter, quote and escape characters in the read options",
			Code:    "CSV003",
		},
	},
	{
		pattern: "header row was null",
		msg: UserMessage{
			Message: "No header row is set",
			Action:  "Turn off writing the header or mark the first row as header",
			Code:    "HDR001",
		},
	},
	{
		pattern: "host connection closed",
		msg: UserMessage{
			Message: "The editor host is not connected",
			Action:  "Reopen the editor from the host",
			Code:    "BRG001",
		},
	},
	{
		pattern: "unknown host command",
		msg: UserMessage{
			Message: "The host sent a message the editor does not understand",
			Action:  "Make sure the host and the editor versions match",
			Code:    "BRG002",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body is not valid JSON",
			Action:  "Send a JSON body matching the endpoint",
			Code:    "REQ001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The request body is too large",
			Action:  "Send less content or raise EDITOR_MAX_BODY_SIZE",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ004",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the editor logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. If no
// pattern matches, a generic message with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
