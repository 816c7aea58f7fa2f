package announcement

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ValidSeverity reports whether s is one of the known banner severities.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return true
	}
	return false
}

// Announcement is the public banner shown on the dashboard. It lives only in
// the cache; there is no relational row behind it.
type Announcement struct {
	ID        string     `json:"id"`
	Message   string     `json:"message"`
	Severity  Severity   `json:"severity"`
	StartAt   *time.Time `json:"startAt,omitempty"`
	EndAt     *time.Time `json:"endAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
