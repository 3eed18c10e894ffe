package transport

import (
	"errors"

	"github.com/UnendingLoop/ResizedImage/internal/model"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500):
		return 500
	case errors.Is(err, model.ErrInvalidArgument),
		errors.Is(err, model.ErrBadPayload):
		return 400
	case errors.Is(err, model.ErrImageUnreadable):
		return 422
	case errors.Is(err, model.ErrWarmupDisabled):
		return 503
	default:
		return 500
	}
}
