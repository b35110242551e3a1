package handlers

import (
	"errors"

	"github.com/mossy-p/rooms/internal/models"
)

// Error labels shared by HTTP responses and channel error events
const (
	errBadRequest    = "Bad Request"
	errRoomNotFound  = "Room not found"
	errNameTaken     = "Name taken"
	errConflict      = "Conflict"
	errAlreadyJoined = "Already joined"
	errNotFound      = "Not Found"
	errInternal      = "Internal Server Error"
)

func validationResponse(err error) models.ErrorResponse {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return models.ErrorResponse{Error: errBadRequest, Details: verr.Details}
	}
	return models.ErrorResponse{Error: errBadRequest, Details: err.Error()}
}
