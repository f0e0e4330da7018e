package domain

// Identity is the outcome of resolving who is behind a request.
// It is either Authenticated or Unauthenticated.
type Identity interface {
	isIdentity()
}

// Authenticated is a resolved caller
type Authenticated struct {
	ProfileID int64
	Email     string
	User      UserInfo
	Session   Session
}

// Unauthenticated is a caller without a usable session. Reason is for logging only.
type Unauthenticated struct {
	Reason string
	// HadSession is true when the request carried a session that turned out to be unusable.
	HadSession bool
}

func (Authenticated) isIdentity()   {}
func (Unauthenticated) isIdentity() {}
