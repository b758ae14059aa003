package model

import (
	"encoding/json"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	CardNumberLength = 16
	PINLength        = 4
)

// Account is a card holder with a single balance held in minor units.
type Account struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CardNumber string    `json:"card_number"`
	PIN        string    `json:"-"`
	Balance    int64     `json:"balance"`
	Version    int64     `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the provisioning rules for a new account.
func (a Account) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.CardNumber, validation.Required, validation.Length(CardNumberLength, CardNumberLength), is.Digit),
		validation.Field(&a.PIN, validation.Required, validation.Length(PINLength, PINLength), is.Digit),
		validation.Field(&a.Balance, validation.Min(int64(0))),
	)
}

// CardLast4 returns the masked card number.
func (a Account) CardLast4() string {
	return MaskCardNumber(a.CardNumber)
}

func (a *Account) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}
