package atm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/blnk-atm/database/mocks"
	"github.com/blnkfinance/blnk-atm/model"
)

func TestListHistory_NewestFirst(t *testing.T) {
	a, ds := newTestATM(t)
	account := createAccount(t, ds, johnCard, johnPIN, 100000)
	ctx := context.Background()

	var ids []int64
	for i := 1; i <= 12; i++ {
		txn, err := a.Deposit(ctx, account.ID, int64(i*100), johnPIN)
		require.NoError(t, err)
		ids = append(ids, txn.ID)
	}

	history, err := a.ListHistory(ctx, account.ID, johnPIN, 0)
	require.NoError(t, err)
	require.Len(t, history, DefaultHistoryLimit)
	for i, txn := range history {
		assert.Equal(t, ids[len(ids)-1-i], txn.ID)
		assert.Equal(t, account.ID, txn.AccountID)
	}

	history, err = a.ListHistory(ctx, account.ID, johnPIN, 3)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	history, err = a.ListHistory(ctx, account.ID, johnPIN, 50)
	require.NoError(t, err)
	assert.Len(t, history, 12)
}

func TestListHistory_Empty(t *testing.T) {
	a, ds := newTestATM(t)
	account := createAccount(t, ds, johnCard, johnPIN, 100)

	history, err := a.ListHistory(context.Background(), account.ID, johnPIN, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestListHistory_RequiresPIN(t *testing.T) {
	a, ds := newTestATM(t)
	account := createAccount(t, ds, johnCard, johnPIN, 100)

	_, err := a.ListHistory(context.Background(), account.ID, "0000", 0)
	assert.True(t, errors.Is(err, model.ErrInvalidCredential))

	_, err = a.ListHistory(context.Background(), account.ID+1, johnPIN, 0)
	assert.True(t, errors.Is(err, model.ErrAccountNotFound))
}

func TestListHistory_Limits(t *testing.T) {
	ds := new(mocks.MockDataSource)
	a := NewATM(ds, WithHistoryLimit(5))

	stored := &model.Account{ID: 1, CardNumber: johnCard, PIN: johnPIN}
	ds.On("GetAccount", mock.Anything, int64(1)).Return(stored, nil)
	ds.On("ListRecentTransactions", mock.Anything, int64(1), 5).Return([]model.Transaction{}, nil).Once()
	ds.On("ListRecentTransactions", mock.Anything, int64(1), MaxHistoryLimit).Return([]model.Transaction{}, nil).Once()

	_, err := a.ListHistory(context.Background(), 1, johnPIN, -1)
	require.NoError(t, err)

	_, err = a.ListHistory(context.Background(), 1, johnPIN, 5000)
	require.NoError(t, err)

	ds.AssertExpectations(t)
}
