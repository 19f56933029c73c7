package request

import (
	"time"

	"github.com/google/uuid"
)

type SearchAvailabilityRequest struct {
	RestaurantID uuid.UUID `json:"restaurant_id" binding:"required"`
	Date         time.Time `json:"date" binding:"required"`
	PartySize    int       `json:"party_size" binding:"required,min=1"`
}

type FindHoldRequest struct {
	RestaurantID uuid.UUID  `json:"restaurant_id" binding:"required"`
	SectionID    *uuid.UUID `json:"section_id"`
	Date         time.Time  `json:"date" binding:"required"`
	StartTime    time.Time  `json:"start_time" binding:"required"`
	PartySize    int        `json:"party_size" binding:"required,min=1"`
}

type TableDetailsRequest struct {
	PreferredSectionID *uuid.UUID `json:"preferred_section_id"`
	PreferredTableID   *uuid.UUID `json:"preferred_table_id"`
	SectionFlexible    bool       `json:"section_flexible"`
	TimeFlexible       bool       `json:"time_flexible"`
}

type CreateRequestRequest struct {
	RestaurantID  uuid.UUID            `json:"restaurant_id" binding:"required"`
	HeldSlotID    uuid.UUID            `json:"held_slot_id" binding:"required"`
	RequestedDate time.Time            `json:"requested_date" binding:"required"`
	RequestedTime time.Time            `json:"requested_time" binding:"required"`
	Adults        int                  `json:"adults" binding:"required,min=1"`
	Children      int                  `json:"children" binding:"min=0"`
	ContactName   string               `json:"contact_name" binding:"required"`
	ContactPhone  string               `json:"contact_phone"`
	ContactEmail  string               `json:"contact_email"`
	MealType      string               `json:"meal_type" binding:"required"`
	EstimateCents int64                `json:"estimate_cents" binding:"min=0"`
	TableDetails  *TableDetailsRequest `json:"table_details"`
}

type ConfirmRequest struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
}

type ReassignRequest struct {
	NewTableID uuid.UUID `json:"new_table_id" binding:"required"`
	NewDate    time.Time `json:"new_date" binding:"required"`
	NewStart   time.Time `json:"new_start" binding:"required"`
	Note       string    `json:"note"`
}

type UpdateDetailsRequest struct {
	PartySize *int   `json:"party_size" binding:"omitempty,min=1"`
	Note      string `json:"note"`
}
