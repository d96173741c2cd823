// Package authz decides whether an acting user may touch a resource owned by someone.
package authz

import (
	"estate_backend/internal/common"

	"github.com/google/uuid"
)

// Action names an identity-scoped operation.
type Action int

const (
	UpdateAccount Action = iota
	DeleteAccount
	ViewOwnListings
	CreateListing
	UpdateListing
	DeleteListing
)

var reasons = map[Action]string{
	UpdateAccount:   "You can only update your own account!",
	DeleteAccount:   "You can only delete your own account!",
	ViewOwnListings: "You can only view your own listings!",
	CreateListing:   "You can only create listings for your own account!",
	UpdateListing:   "You can only update your own listings!",
	DeleteListing:   "You can only delete your own listings!",
}

// Reason is the message returned when action is refused.
func (a Action) Reason() string {
	if r, ok := reasons[a]; ok {
		return r
	}
	return common.ErrForbidden.Message
}

// Authorize allows the call only when actor owns the resource.
// A missing actor is ErrUnauthorized; a different owner is ErrForbidden carrying the action's reason.
func Authorize(actor, owner uuid.UUID, action Action) error {
	if actor == uuid.Nil {
		return common.ErrUnauthorized
	}
	if actor != owner {
		return common.ErrForbidden.WithMessage(action.Reason())
	}
	return nil
}

// AuthorizeRaw is Authorize for owner ids taken straight from a URL. An id that
// does not parse can never belong to the actor.
func AuthorizeRaw(actor uuid.UUID, rawOwner string, action Action) (uuid.UUID, error) {
	if actor == uuid.Nil {
		return uuid.Nil, common.ErrUnauthorized
	}
	owner, err := uuid.Parse(rawOwner)
	if err != nil {
		return uuid.Nil, common.ErrForbidden.WithMessage(action.Reason())
	}
	if err := Authorize(actor, owner, action); err != nil {
		return uuid.Nil, err
	}
	return owner, nil
}
