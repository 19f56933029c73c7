package request

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrEmptyParty       = errors.New("party must include at least one adult")
	ErrNegativeCount    = errors.New("party counts cannot be negative")
	ErrBlankContactName = errors.New("contact name is required")
)

type Party struct {
	adults   int
	children int
}

func NewParty(adults, children int) (Party, error) {
	if adults < 0 || children < 0 {
		return Party{}, ErrNegativeCount
	}
	if adults == 0 {
		return Party{}, ErrEmptyParty
	}
	return Party{adults: adults, children: children}, nil
}

func (p Party) Adults() int   { return p.adults }
func (p Party) Children() int { return p.children }
func (p Party) Size() int     { return p.adults + p.children }

type Contact struct {
	name  string
	phone string
	email string
}

func NewContact(name, phone, email string) (Contact, error) {
	if name == "" {
		return Contact{}, ErrBlankContactName
	}
	return Contact{name: name, phone: phone, email: email}, nil
}

func (c Contact) Name() string  { return c.name }
func (c Contact) Phone() string { return c.phone }
func (c Contact) Email() string { return c.email }

// TableDetails carries section/table/time preferences for table-type
// requests, including how flexible the customer is about each.
type TableDetails struct {
	PreferredSectionID *uuid.UUID
	PreferredTableID   *uuid.UUID
	SectionFlexible    bool
	TimeFlexible       bool
}
