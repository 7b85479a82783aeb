// Package authz decides whether a session identity may mutate a record.
package authz

// CanMutate reports whether the requester may update or delete a record
// owned by ownerID. A nil requesterID means no session (the caller should
// surface an unauthenticated error); admins may mutate anything; otherwise
// the requester must be the owner. A nil ownerID (anonymous record) is
// mutable only by admins.
//
// Pure and deterministic; all I/O (loading the owner, resolving the admin
// flag) happens in the caller.
func CanMutate(requesterID *uint, isAdmin bool, ownerID *uint) bool {
	if requesterID == nil {
		return false
	}
	if isAdmin {
		return true
	}
	if ownerID == nil {
		return false
	}
	return *requesterID == *ownerID
}
