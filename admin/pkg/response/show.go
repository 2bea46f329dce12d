package response

import (
	"time"

	"github.com/google/uuid"
)

type Show struct {
	ID        uuid.UUID `json:"id"`
	Venue     string    `json:"venue"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Date      time.Time `json:"date"`
	TicketURL string    `json:"ticketUrl"`
	OnSale    bool      `json:"onSale"`
	SoldOut   bool      `json:"soldOut"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
