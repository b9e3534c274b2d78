package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/AlexZinkM/settlement-ramp/bridge"
	"github.com/AlexZinkM/settlement-ramp/internal/model"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
)

// errorResponse maps an operation error to a status code and the JSON error shape.
// Validation problems carry the inline message; state conflicts are 409.
func errorResponse(err error) (int, model.ErrorResponse) {
	if ve, ok := bridge.AsValidationError(err); ok {
		return http.StatusUnprocessableEntity, model.ErrorResponse{Error: ve.Message, Code: ve.Code}
	}

	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed):
		return http.StatusNotFound, model.ErrorResponse{Error: session.ErrNotFound.Error(), Code: model.CodeNotFound}
	case errors.Is(err, session.ErrUnknownField):
		return http.StatusUnprocessableEntity, model.ErrorResponse{Error: err.Error(), Code: model.CodeUnknownField}
	case errors.Is(err, session.ErrWrongStep), errors.Is(err, session.ErrStepBounds):
		return http.StatusConflict, model.ErrorResponse{Error: err.Error(), Code: model.CodeInvalidStep}
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, bridge.ErrReceiptUnavailable):
		return http.StatusConflict, model.ErrorResponse{Error: err.Error(), Code: model.CodeInvalidTransition}
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, model.ErrorResponse{Error: err.Error(), Code: model.CodeBusy}
	case errors.Is(err, session.ErrLocked):
		return http.StatusConflict, model.ErrorResponse{Error: err.Error(), Code: model.CodeLocked}
	case errors.Is(err, errDuplicate):
		return http.StatusConflict, model.ErrorResponse{Error: err.Error(), Code: model.CodeDuplicate}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, model.ErrorResponse{Error: "request cancelled", Code: model.CodeInternal}
	}
	return http.StatusInternalServerError, model.ErrorResponse{Error: "internal error", Code: model.CodeInternal}
}
