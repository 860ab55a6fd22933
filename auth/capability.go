package auth

// Actor is the identity performing an operation, as forwarded by the gateway.
// The core never resolves sessions itself; it only checks capabilities.
type Actor struct {
	ID    string
	Roles []string
}

type Capability string

const (
	CapAdmin     Capability = "admin"
	CapVolunteer Capability = "volunteer"
)

// Checker answers capability questions for an actor. Services consult it
// before every privileged transition instead of embedding auth logic.
type Checker interface {
	HasCapability(actor Actor, cap Capability) bool
}

// RoleChecker maps gateway-forwarded roles directly onto capabilities.
type RoleChecker struct{}

func (RoleChecker) HasCapability(actor Actor, cap Capability) bool {
	for _, r := range actor.Roles {
		if r == string(cap) {
			return true
		}
	}
	return false
}
