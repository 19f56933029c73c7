package slot

type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusHeld        Status = "HELD"
	StatusReserved    Status = "RESERVED"
	StatusBlocked     Status = "BLOCKED"
	StatusMaintenance Status = "MAINTENANCE"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHeld, StatusReserved, StatusBlocked, StatusMaintenance:
		return true
	default:
		return false
	}
}

// Occupying reports whether a slot in this status blocks the table for its
// window. A HELD slot only occupies while its hold is unexpired; that check
// lives on the entity because it needs the expiry timestamp.
func (s Status) Occupying() bool {
	switch s {
	case StatusReserved, StatusHeld, StatusBlocked, StatusMaintenance:
		return true
	default:
		return false
	}
}
