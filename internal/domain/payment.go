package domain

// Payment is a payment method offered by the store (card, transfer, ...).
// Metadata is server-defined and passed through untouched.
type Payment struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Method   string            `json:"method"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (p Payment) EntityID() int64 { return p.ID }

// PaymentDetail holds a user's saved card and billing address for one
// payment method. Edited inline from several screens, so mutations on
// this collection go through the optimistic protocol.
type PaymentDetail struct {
	ID             int64  `json:"id"`
	PaymentID      int64  `json:"payment_id"`
	UserID         int64  `json:"user_id"`
	CardNumber     string `json:"card_number"`
	ExpirationDate string `json:"expiration_date"`
	CVC            string `json:"cvc"`
	Country        string `json:"country"`
	AddressLine1   string `json:"address_line1"`
	City           string `json:"city"`
	PostalCode     string `json:"postal_code"`
}

func (d PaymentDetail) EntityID() int64 { return d.ID }
