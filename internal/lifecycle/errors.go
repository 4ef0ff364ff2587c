package lifecycle

import (
	"net/http"

	apperrors "github.com/spec-kit/support-console/pkg/util"
)

// Validation failures. Every mutation returns one of these before touching the
// ticket, so a rejected operation leaves no partial state behind.
var (
	ErrReasonRequired      = apperrors.NewDomainError("REASON_REQUIRED", "escalation reason required", http.StatusBadRequest, nil)
	ErrTargetRequired      = apperrors.NewDomainError("TARGET_REQUIRED", "target required", http.StatusBadRequest, nil)
	ErrUnknownAgent        = apperrors.NewDomainError("UNKNOWN_AGENT", "agent not known", http.StatusBadRequest, nil)
	ErrSelfTransfer        = apperrors.NewDomainError("SELF_TRANSFER", "cannot transfer a ticket to yourself", http.StatusBadRequest, nil)
	ErrMergeDifferentUser  = apperrors.NewDomainError("MERGE_DIFFERENT_USER", "tickets belong to different users", http.StatusBadRequest, nil)
	ErrMergeSelf           = apperrors.NewDomainError("MERGE_SELF", "cannot merge a ticket into itself", http.StatusBadRequest, nil)
	ErrInvalidTransition   = apperrors.NewDomainError("INVALID_TRANSITION", "operation not allowed in current status", http.StatusConflict, nil)
	ErrAlreadyCollaborator = apperrors.NewDomainError("ALREADY_COLLABORATOR", "agent already collaborates on ticket", http.StatusConflict, nil)
	ErrEmptyTag            = apperrors.NewDomainError("EMPTY_TAG", "tag required", http.StatusBadRequest, nil)
	ErrEmptyBody           = apperrors.NewDomainError("EMPTY_BODY", "text required", http.StatusBadRequest, nil)
	ErrInvalidRating       = apperrors.NewDomainError("INVALID_RATING", "rating must be between 1 and 5", http.StatusBadRequest, nil)
	ErrInvalidInput        = apperrors.NewDomainError("INVALID_INPUT", "invalid ticket input", http.StatusBadRequest, nil)
)
