package reservation

import (
	"errors"
)

var ErrNegativeAmount = errors.New("amount cannot be negative")

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: cents}, nil
}

func MustMoney(cents int64) Money {
	m, err := NewMoney(cents)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Percent returns pct% of the amount rounded to the nearest whole cent.
func (m Money) Percent(pct int) Money {
	if pct <= 0 {
		return Money{}
	}
	return Money{cents: (m.cents*int64(pct) + 50) / 100}
}

// Financials is the monetary breakdown recorded with a confirmed
// reservation. Balance due may go negative when an advance overpays; isPaid
// derives from balanceDue <= 0, never stored independently.
type Financials struct {
	net           Money
	serviceCharge Money
	tax           Money
	advancePaid   Money
}

func NewFinancials(net, serviceCharge, tax, advancePaid Money) Financials {
	return Financials{
		net:           net,
		serviceCharge: serviceCharge,
		tax:           tax,
		advancePaid:   advancePaid,
	}
}

func (f Financials) Net() Money           { return f.net }
func (f Financials) ServiceCharge() Money { return f.serviceCharge }
func (f Financials) Tax() Money           { return f.tax }
func (f Financials) AdvancePaid() Money   { return f.advancePaid }

func (f Financials) Total() Money {
	return f.net.Add(f.serviceCharge).Add(f.tax)
}

func (f Financials) BalanceDueCents() int64 {
	return f.Total().Cents() - f.advancePaid.Cents()
}

func (f Financials) IsPaid() bool {
	return f.BalanceDueCents() <= 0
}
