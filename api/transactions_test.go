/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	atm "github.com/blnkfinance/blnk-atm"
	model2 "github.com/blnkfinance/blnk-atm/api/model"
	"github.com/blnkfinance/blnk-atm/config"
	"github.com/blnkfinance/blnk-atm/database/mocks"
	"github.com/blnkfinance/blnk-atm/internal/request"
	"github.com/blnkfinance/blnk-atm/model"
)

func TestWithdrawAndDeposit(t *testing.T) {
	router, ds := setupRouter(t)
	account := seedAccount(t, ds, "1111222233334444", "1234", 10000)

	tests := []struct {
		name         string
		route        string
		payload      model2.TransactionRequest
		expectedCode int
		balance      string
	}{
		{name: "withdraw", route: "withdraw", payload: model2.TransactionRequest{Amount: "40", PIN: "1234"}, expectedCode: http.StatusCreated, balance: "60.00"},
		{name: "deposit", route: "deposit", payload: model2.TransactionRequest{Amount: "15.50", PIN: "1234"}, expectedCode: http.StatusCreated, balance: "75.50"},
		{name: "insufficient funds", route: "withdraw", payload: model2.TransactionRequest{Amount: "1000", PIN: "1234"}, expectedCode: http.StatusUnprocessableEntity, balance: "75.50"},
		{name: "wrong pin", route: "deposit", payload: model2.TransactionRequest{Amount: "10", PIN: "9999"}, expectedCode: http.StatusUnauthorized, balance: "75.50"},
		{name: "negative amount", route: "deposit", payload: model2.TransactionRequest{Amount: "-10", PIN: "1234"}, expectedCode: http.StatusBadRequest, balance: "75.50"},
		{name: "too many decimals", route: "withdraw", payload: model2.TransactionRequest{Amount: "1.001", PIN: "1234"}, expectedCode: http.StatusBadRequest, balance: "75.50"},
		{name: "not a number", route: "withdraw", payload: model2.TransactionRequest{Amount: "ten", PIN: "1234"}, expectedCode: http.StatusBadRequest, balance: "75.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloadBytes, _ := request.ToJsonReq(&tt.payload)
			var response model2.TransactionResponse
			resp, err := SetUpTestRequest(TestRequest{
				Payload:  payloadBytes,
				Response: &response,
				Method:   http.MethodPost,
				Route:    fmt.Sprintf("/accounts/%d/%s", account.ID, tt.route),
				Router:   router,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, resp.Code)

			if tt.expectedCode == http.StatusCreated {
				assert.Equal(t, tt.balance, response.Transaction.BalanceAfter)
				require.NotNil(t, response.Receipt)
				assert.Equal(t, tt.balance, response.Receipt.NewBalance)
				assert.Equal(t, "4444", response.Receipt.CardLast4)
				assert.Equal(t, response.Transaction.ID, response.Receipt.TransactionID)
			}

			stored, err := ds.GetAccount(context.Background(), account.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.balance, model.FormatAmount(stored.Balance))
		})
	}
}

func TestListTransactions(t *testing.T) {
	router, ds := setupRouter(t)
	account := seedAccount(t, ds, "1111222233334444", "1234", 10000)

	for _, value := range []string{"1.00", "2.00", "3.00"} {
		payload, _ := request.ToJsonReq(model2.TransactionRequest{Amount: value, PIN: "1234"})
		resp, err := SetUpTestRequest(TestRequest{
			Router:   router,
			Method:   http.MethodPost,
			Route:    fmt.Sprintf("/accounts/%d/deposit", account.ID),
			Payload:  payload,
			Response: &model2.TransactionResponse{},
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	route := fmt.Sprintf("/accounts/%d/transactions", account.ID)

	payload, _ := request.ToJsonReq(model2.HistoryRequest{PIN: "1234"})
	var history []model2.Transaction
	resp, err := SetUpTestRequest(TestRequest{Router: router, Method: http.MethodPost, Route: route, Payload: payload, Response: &history})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, history, 3)
	assert.Equal(t, "3.00", history[0].Amount)
	assert.Equal(t, "1.00", history[2].Amount)

	payload, _ = request.ToJsonReq(model2.HistoryRequest{PIN: "1234", Limit: 2})
	history = nil
	resp, err = SetUpTestRequest(TestRequest{Router: router, Method: http.MethodPost, Route: route, Payload: payload, Response: &history})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, history, 2)

	payload, _ = request.ToJsonReq(model2.HistoryRequest{PIN: "0000"})
	resp, err = SetUpTestRequest(TestRequest{Router: router, Method: http.MethodPost, Route: route, Payload: payload, Response: &map[string]interface{}{}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetReceipt(t *testing.T) {
	router, ds := setupRouter(t)
	john := seedAccount(t, ds, "1111222233334444", "1234", 543210)
	jane := seedAccount(t, ds, "9999888877776666", "5678", 1050075)

	payload, _ := request.ToJsonReq(model2.TransactionRequest{Amount: "20.00", PIN: "1234"})
	var created model2.TransactionResponse
	resp, err := SetUpTestRequest(TestRequest{
		Router:   router,
		Method:   http.MethodPost,
		Route:    fmt.Sprintf("/accounts/%d/deposit", john.ID),
		Payload:  payload,
		Response: &created,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.Code)

	var receipt model2.Receipt
	resp, err = SetUpTestRequest(TestRequest{
		Router:   router,
		Method:   http.MethodGet,
		Route:    fmt.Sprintf("/accounts/%d/receipts/%d", john.ID, created.Transaction.ID),
		Response: &receipt,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "4444", receipt.CardLast4)
	assert.Equal(t, model.TxnDeposit, receipt.TxnType)
	assert.Equal(t, "20.00", receipt.Amount)
	assert.Equal(t, "5452.10", receipt.NewBalance)

	resp, err = SetUpTestRequest(TestRequest{
		Router:   router,
		Method:   http.MethodGet,
		Route:    fmt.Sprintf("/accounts/%d/receipts/%d", jane.ID, created.Transaction.ID),
		Response: &map[string]interface{}{},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestWithdraw_ReceiptFailureStillCreated(t *testing.T) {
	conf := &config.Configuration{ProjectName: "Blnk ATM"}
	config.MockConfig(conf)

	account := &model.Account{ID: 1, Name: "John Doe", CardNumber: "1111222233334444", PIN: "1234", Balance: 10000, Version: 1}
	txn := &model.Transaction{ID: 9, AccountID: 1, Type: model.TxnWithdraw, Amount: 4000, BalanceAfter: 6000}

	ds := new(mocks.MockDataSource)
	ds.On("GetAccount", mock.Anything, int64(1)).Return(account, nil)
	ds.On("RecordTransactionAndUpdateBalance", mock.Anything, mock.Anything, model.TxnWithdraw, int64(4000), int64(6000)).Return(txn, nil)
	ds.On("GetTransaction", mock.Anything, int64(1), int64(9)).Return(nil, errors.Wrap(model.ErrStorage, "connection reset"))

	router := NewAPI(atm.NewATM(ds), conf).Router()

	payloadBytes, _ := request.ToJsonReq(&model2.TransactionRequest{Amount: "40", PIN: "1234"})
	var response model2.TransactionResponse
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payloadBytes,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/accounts/1/withdraw",
		Router:   router,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, int64(9), response.Transaction.ID)
	assert.Equal(t, "60.00", response.Transaction.BalanceAfter)
	assert.Nil(t, response.Receipt)
	ds.AssertExpectations(t)
}
