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

package apierror

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/blnk-atm/model"
)

type ErrorCode string

const (
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrUnavailable       ErrorCode = "SERVICE_UNAVAILABLE"
	ErrInternalServer    ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	if details != nil {
		logrus.Error(details)
	}
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// FromError classifies an engine error. Storage failures keep their cause
// out of the message; the caller only learns to try again.
func FromError(err error) APIError {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, model.ErrAccountNotFound):
		return APIError{Code: ErrNotFound, Message: model.ErrAccountNotFound.Error()}
	case errors.Is(err, model.ErrTransactionNotFound):
		return APIError{Code: ErrNotFound, Message: model.ErrTransactionNotFound.Error()}
	case errors.Is(err, model.ErrInvalidCredential):
		return APIError{Code: ErrUnauthorized, Message: model.ErrInvalidCredential.Error()}
	case errors.Is(err, model.ErrInvalidAmount):
		return APIError{Code: ErrInvalidInput, Message: err.Error()}
	case errors.Is(err, model.ErrInsufficientFunds):
		return APIError{Code: ErrInsufficientFunds, Message: model.ErrInsufficientFunds.Error()}
	case errors.Is(err, model.ErrStorage):
		return NewAPIError(ErrUnavailable, "the ledger is temporarily unavailable, please try again", err.Error())
	default:
		return NewAPIError(ErrInternalServer, "an unexpected error occurred", err.Error())
	}
}

func MapErrorToHTTPStatus(err error) int {
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError
	}
	switch apiErr.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrInvalidInput:
		return http.StatusBadRequest
	case ErrInsufficientFunds:
		return http.StatusUnprocessableEntity
	case ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
