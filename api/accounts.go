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
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/blnkfinance/blnk-atm/api/model"
	"github.com/blnkfinance/blnk-atm/model"
)

func (a Api) Login(c *gin.Context) {
	var login model2.Login
	if err := c.ShouldBindJSON(&login); err != nil {
		badRequest(c, err)
		return
	}

	if err := login.ValidateLogin(); err != nil {
		badRequest(c, err)
		return
	}

	account, err := a.atm.Login(c.Request.Context(), login.CardNumber, login.PIN)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, model2.LoginResponse{AccountID: account.ID, Name: account.Name})
}

// GetAccount serves the dashboard view. It exposes no balance so it needs no PIN.
func (a Api) GetAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	account, err := a.atm.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, model2.ToAccountResponse(account))
}

func (a Api) CheckBalance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model2.PINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.ValidatePIN(); err != nil {
		badRequest(c, err)
		return
	}

	balance, err := a.atm.CheckBalance(c.Request.Context(), id, req.PIN)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, model2.BalanceResponse{Balance: model.FormatAmount(balance)})
}
