package textsync

import "fmt"

// Status is the state of a Sync.
//
//	init -> parsing -> ok | error
//	ok -> saving -> saved -> ok
//
// error is not terminal: the next successful decode moves back to ok.
type Status int

const (
	StatusInit Status = iota
	StatusParsing
	StatusOK
	StatusError
	StatusSaving
	StatusSaved
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusParsing:
		return "parsing"
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
