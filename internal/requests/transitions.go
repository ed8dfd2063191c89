package requests

import (
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
)

// allowedTransitions is the complete set of legal status edges. Rejected and
// fulfilled have no outgoing edges.
var allowedTransitions = map[enums.RequestStatus][]enums.RequestStatus{
	enums.RequestStatusDraft:    {enums.RequestStatusPending},
	enums.RequestStatusPending:  {enums.RequestStatusApproved, enums.RequestStatusRejected},
	enums.RequestStatusApproved: {enums.RequestStatusFulfilled},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to enums.RequestStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// requiresReviewer reports whether the edge needs an admin or manager. Only
// submitting a draft is open to the requester.
func requiresReviewer(from, to enums.RequestStatus) bool {
	return !(from == enums.RequestStatusDraft && to == enums.RequestStatusPending)
}

func invalidTransition(from, to enums.RequestStatus) error {
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, "status transition not allowed").
		WithDetails(map[string]any{"from": string(from), "to": string(to)})
}

func immutableField(field string, status enums.RequestStatus) error {
	return pkgerrors.New(pkgerrors.CodeImmutableField, field+" can no longer be changed").
		WithDetails(map[string]any{"field": field, "status": string(status)})
}

// checkEdits rejects field edits once a request has left draft or pending.
func checkEdits(status enums.RequestStatus, patch Patch) error {
	if status.IsEditable() {
		return nil
	}
	if fields := patch.editedFields(); len(fields) > 0 {
		return immutableField(fields[0], status)
	}
	return nil
}
