package domain

import "time"

// AuthorizationMethod names how the sender proved intent.
type AuthorizationMethod string

const AuthorizationTransferPIN AuthorizationMethod = "TRANSFER_PIN"

// Authorization is the proof, produced by the authorization collaborator, that the
// sender verified this transfer. The settlement engine refuses to run without one.
type Authorization struct {
	AccountID  string
	Method     AuthorizationMethod
	VerifiedAt time.Time
}

// IsZero reports whether no authorization was supplied.
func (a Authorization) IsZero() bool {
	return a.AccountID == "" || a.VerifiedAt.IsZero()
}
