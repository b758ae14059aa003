package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	model2 "github.com/blnkfinance/blnk-atm/api/model"
	"github.com/blnkfinance/blnk-atm/model"
)

type transactionFunc func(ctx context.Context, accountID int64, amount int64, pin string) (*model.Transaction, error)

func (a Api) Withdraw(c *gin.Context) {
	a.applyTransaction(c, a.atm.Withdraw)
}

func (a Api) Deposit(c *gin.Context) {
	a.applyTransaction(c, a.atm.Deposit)
}

func (a Api) applyTransaction(c *gin.Context, apply transactionFunc) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model2.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.ValidateTransaction(); err != nil {
		badRequest(c, err)
		return
	}

	amount, err := req.MinorUnits()
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := apply(c.Request.Context(), id, amount, req.PIN)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// The transaction is committed at this point; a receipt failure must not
	// turn it into an error response.
	response := model2.TransactionResponse{Transaction: model2.ToTransaction(*txn)}
	receipt, err := a.atm.BuildReceipt(c.Request.Context(), id, txn.ID)
	if err != nil {
		logrus.Errorf("failed to build receipt for transaction %d: %v", txn.ID, err)
	} else {
		r := model2.ToReceipt(receipt)
		response.Receipt = &r
	}

	c.JSON(http.StatusCreated, response)
}

func (a Api) ListTransactions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model2.HistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.ValidateHistory(); err != nil {
		badRequest(c, err)
		return
	}

	txns, err := a.atm.ListHistory(c.Request.Context(), id, req.PIN, req.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, model2.ToTransactions(txns))
}

func (a Api) GetReceipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	txnID, ok := parseIDParam(c, "txn_id")
	if !ok {
		return
	}

	receipt, err := a.atm.BuildReceipt(c.Request.Context(), id, txnID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, model2.ToReceipt(receipt))
}
