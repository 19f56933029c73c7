package request

type Status string

const (
	StatusPending                Status = "PENDING"
	StatusPendingCustomerPayment Status = "PENDING_CUSTOMER_PAYMENT"
	StatusPaymentLinkExpired     Status = "PAYMENT_LINK_EXPIRED"
	StatusPaymentFailed          Status = "PAYMENT_FAILED"
	StatusConfirmed              Status = "CONFIRMED"
	StatusCancelled              Status = "CANCELLED"
	StatusCompleted              Status = "COMPLETED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPendingCustomerPayment, StatusPaymentLinkExpired,
		StatusPaymentFailed, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusPaymentLinkExpired, StatusPaymentFailed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

var transitions = map[Status][]Status{
	StatusPending: {
		StatusPendingCustomerPayment,
		StatusConfirmed,
		StatusPaymentFailed,
		StatusPaymentLinkExpired,
		StatusCancelled,
	},
	StatusPendingCustomerPayment: {
		StatusConfirmed,
		StatusPaymentFailed,
		StatusPaymentLinkExpired,
		StatusCancelled,
	},
	StatusConfirmed: {
		StatusCompleted,
		StatusCancelled,
	},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type MealType string

const (
	MealTypeBreakfast MealType = "BREAKFAST"
	MealTypeLunch     MealType = "LUNCH"
	MealTypeHighTea   MealType = "HIGH_TEA"
	MealTypeDinner    MealType = "DINNER"
)

func (m MealType) IsValid() bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeHighTea, MealTypeDinner:
		return true
	default:
		return false
	}
}
