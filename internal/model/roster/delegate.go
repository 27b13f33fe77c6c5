package roster

import "fmt"

// Status describes a delegate's allocation state within the conference.
type Status string

const (
	StatusAllocated    Status = "Allocated"
	StatusPending      Status = "Pending"
	StatusWaitlist     Status = "Waitlist"
	StatusHeadDelegate Status = "Head Delegate"
)

// Statuses lists every accepted status value.
func Statuses() []Status {
	return []Status{StatusAllocated, StatusPending, StatusWaitlist, StatusHeadDelegate}
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses() {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown delegate status %q", raw)
}

// Delegate is a single roster row. The ID is assigned by the system on
// creation and never changes afterwards; it is unique within a snapshot.
type Delegate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Allotment string `json:"allotment"`
	Committee string `json:"committee"`
	Class     string `json:"class,omitempty"`
	Status    Status `json:"status"`
	Team      string `json:"team"`
}
