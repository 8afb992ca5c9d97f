package domain

import (
	"context"
	"fmt"
	"time"
)

// Command types understood by the interpreter.
const (
	CommandAddUser    = "add_user"
	CommandLoginUser  = "login_user"
	CommandLogoutUser = "logout_user"
	CommandRemoveUser = "remove_user"
)

// Command is a single remotely-issued intent. The id is assigned by the
// control server and orders execution within a batch.
type Command struct {
	ID     int64
	Type   string
	Params map[string]string
}

// Param returns the first non-empty value among the given parameter keys.
func (c Command) Param(keys ...string) string {
	for _, k := range keys {
		if v := c.Params[k]; v != "" {
			return v
		}
	}
	return ""
}

// Command result statuses as reported to the control server.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// CommandResult is the normalized outcome of one command execution.
type CommandResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success builds a success result with a formatted message.
func Success(format string, args ...any) CommandResult {
	return CommandResult{Status: StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

// Failure builds an error result with a formatted message.
func Failure(format string, args ...any) CommandResult {
	return CommandResult{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// JournalEntry records one executed command and its outcome.
type JournalEntry struct {
	ID        int64
	CommandID int64
	Type      string
	Status    string
	Message   string
	CreatedAt time.Time
}

// CommandJournal defines the port for the optional command-outcome journal.
type CommandJournal interface {
	Append(ctx context.Context, e JournalEntry) error
	Recent(ctx context.Context, limit int) ([]JournalEntry, error)
}
