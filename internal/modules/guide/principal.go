package guide

// PrincipalKind tags the two kinds of requesters.
type PrincipalKind string

const (
	PrincipalUser      PrincipalKind = "user"
	PrincipalAnonymous PrincipalKind = "anonymous"
)

// Principal identifies who is asking: a signed-in user or an anonymous
// session. The coordinator dispatches on Kind to pick the ownership ledger;
// it never performs authentication itself.
type Principal struct {
	Kind PrincipalKind
	ID   string
}

func UserPrincipal(userID string) Principal {
	return Principal{Kind: PrincipalUser, ID: userID}
}

func AnonymousPrincipal(sessionID string) Principal {
	return Principal{Kind: PrincipalAnonymous, ID: sessionID}
}

func (p Principal) Valid() bool {
	if p.ID == "" {
		return false
	}
	return p.Kind == PrincipalUser || p.Kind == PrincipalAnonymous
}
