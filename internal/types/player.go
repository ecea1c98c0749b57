package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SkillGG/bossDungeon/internal/room"
	"github.com/go-playground/validator/v10"
)

var ErrInvalidPlayerID = errors.New("invalid player id")

var validate = validator.New(validator.WithRequiredStructEnabled())

type playerRef struct {
	ID string `validate:"required,max=32,printascii,excludesall=0x2C /?#%"`
}

// ValidatePlayerID checks an id taken from a path or query string.
func ValidatePlayerID(id string) error {
	if err := validate.Struct(playerRef{ID: id}); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidPlayerID, id, err)
	}
	return nil
}

// HTTPStatus maps room and validation errors to a response code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPlayerID):
		return http.StatusBadRequest
	case errors.Is(err, room.ErrNotMember):
		return http.StatusNotFound
	case errors.Is(err, room.ErrAlreadyJoined):
		return http.StatusConflict
	case errors.Is(err, room.ErrRoomClosed),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the fixed client-facing text for err. Wrapped details stay
// in the logs.
func PublicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "invalid player id"
	case http.StatusNotFound:
		return "player not in room"
	case http.StatusConflict:
		return "player already joined"
	case http.StatusServiceUnavailable:
		return "room unavailable"
	default:
		return "internal error"
	}
}
