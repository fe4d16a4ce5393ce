package session

import (
	"errors"

	"github.com/cardduel/draft-backend/internal/draft"
	"github.com/cardduel/draft-backend/internal/room"
	"github.com/cardduel/draft-backend/pkg/types"
)

// ErrorCode maps an operation error to its wire code. Unknown errors fall
// back to bad_payload so internal detail never reaches clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomFull):
		return types.CodeRoomFull
	case errors.Is(err, ErrGameNotFound):
		return types.CodeGameNotFound
	case errors.Is(err, draft.ErrInvalidPlayer):
		return types.CodeInvalidPlayer
	case errors.Is(err, draft.ErrNotYourTurn):
		return types.CodeNotYourTurn
	case errors.Is(err, draft.ErrInvalidCard):
		return types.CodeInvalidCard
	case errors.Is(err, draft.ErrCardAlreadyTaken):
		return types.CodeCardAlreadyTaken
	default:
		return types.CodeBadPayload
	}
}
