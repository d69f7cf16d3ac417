package checkin

import (
	"regexp"
	"time"
)

// Event is a named, dated container for attendance records collected at a
// single gathering.
type Event struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	IsActive bool      `json:"isActive"`
}

// Record is one check-in. Exactly one of two shapes holds: a guest record
// (IsGuest set, no profile reference) or a record resolved to a known or
// just-created profile. Records are immutable once appended except for
// deletion.
type Record struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId,omitempty"`
	CWID      string    `json:"cwid,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
	IsGuest   bool      `json:"isGuest"`
	IsMember  bool      `json:"isMember"`
	Note      string    `json:"note,omitempty"`
}

var swipePattern = regexp.MustCompile(`;(\d{8})`)

// ExtractCWID resolves the candidate identifier from raw operator input.
// A card swipe embeds the CWID as 8 digits preceded by ';'; anything else
// is truncated to its first 8 characters.
func ExtractCWID(input string) string {
	if m := swipePattern.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	if len(input) > 8 {
		return input[:8]
	}
	return input
}
