package session

// Status is the authentication state of the current user.
type Status int

const (
	Unauthenticated Status = iota
	Checking
	Authenticated
	Expired
)

func (s Status) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	default:
		return "unauthenticated"
	}
}

// Identity is the denormalized snapshot of the logged-in user returned by
// the backend and persisted alongside the credential.
type Identity struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Session is the current authentication state. status == Authenticated
// implies Credential is set and was accepted by the backend's identity
// check within this process lifetime.
type Session struct {
	Credential string
	Identity   Identity
	Status     Status
}
