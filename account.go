package atm

import (
	"context"

	"github.com/pkg/errors"

	"github.com/blnkfinance/blnk-atm/model"
)

// Login resolves a card number and PIN to an account. Any mismatch is
// reported as ErrInvalidCredential without saying which half was wrong.
func (a *ATM) Login(ctx context.Context, cardNumber, pin string) (*model.Account, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	account, err := a.datasource.FindAccountByCredentials(ctx, cardNumber, pin)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, model.ErrInvalidCredential
		}
		span.RecordError(err)
		return nil, err
	}
	return account, nil
}

// VerifyPIN compares the supplied PIN with the account's in constant time.
func (a *ATM) VerifyPIN(account *model.Account, pin string) bool {
	return model.SecureCompare(account.PIN, pin)
}

func (a *ATM) GetAccount(ctx context.Context, accountID int64) (*model.Account, error) {
	return a.datasource.GetAccount(ctx, accountID)
}

// CheckBalance returns the current balance in minor units.
func (a *ATM) CheckBalance(ctx context.Context, accountID int64, pin string) (int64, error) {
	ctx, span := tracer.Start(ctx, "CheckBalance")
	defer span.End()

	account, err := a.authorize(ctx, accountID, pin)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// authorize loads the account and checks the PIN.
func (a *ATM) authorize(ctx context.Context, accountID int64, pin string) (*model.Account, error) {
	account, err := a.datasource.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !a.VerifyPIN(account, pin) {
		return nil, model.ErrInvalidCredential
	}
	return account, nil
}
