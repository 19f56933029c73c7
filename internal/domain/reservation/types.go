package reservation

type Status string

const (
	StatusConfirmed  Status = "CONFIRMED"
	StatusSeated     Status = "SEATED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusSeated, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

var transitions = map[Status][]Status{
	StatusConfirmed:  {StatusSeated, StatusCancelled},
	StatusSeated:     {StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusCompleted},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
