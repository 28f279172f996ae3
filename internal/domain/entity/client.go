package entity

import "time"

// Client cliente final de una empresa (destinatario de pedidos).
type Client struct {
	ID        string
	CompanyID string
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
