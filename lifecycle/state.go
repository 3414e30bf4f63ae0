// Package lifecycle drives the install/activate state machine for
// cache generations. Installing pre-populates a fresh static
// generation from the asset manifest; activating deletes superseded
// generations and hands open clients over to the new version.
package lifecycle

// State is the controller's position in the install/activate machine.
type State int

const (
	// StateNew is the zero value before any install has started.
	StateNew State = iota
	StateInstalling
	StateInstalled
	StateActivating
	StateActive
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}
