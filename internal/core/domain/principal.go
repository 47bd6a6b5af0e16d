package domain

import "time"

// Principal is the acting identity behind a call. It is either a persisted
// member or the virtual administrator, which has no member row.
type Principal interface {
	isPrincipal()
	// IsAdmin reports whether the principal acts with administrator rights.
	IsAdmin() bool
}

// MemberPrincipal is a regular team member acting on their own behalf.
type MemberPrincipal struct {
	MemberID string
}

func (MemberPrincipal) isPrincipal()  {}
func (MemberPrincipal) IsAdmin() bool { return false }

// AdminPrincipal is the virtual administrator identity.
type AdminPrincipal struct {
	Login string
}

func (AdminPrincipal) isPrincipal()  {}
func (AdminPrincipal) IsAdmin() bool { return true }

// AccessGrant is a signed bearer token handed out on login.
type AccessGrant struct {
	AccessToken string
	ExpiresAt   time.Time
	Principal   Principal
}
