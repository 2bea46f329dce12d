package request

import "time"

type Login struct {
	Password string `json:"password" validate:"required"`
}

type Show struct {
	Venue     string    `json:"venue"     validate:"required"`
	City      string    `json:"city"      validate:"required"`
	State     string    `json:"state"     validate:"required"`
	Date      time.Time `json:"date"      validate:"required"`
	TicketURL string    `json:"ticketUrl" validate:"omitempty,url"`
	OnSale    bool      `json:"onSale"`
	SoldOut   bool      `json:"soldOut"`
}
