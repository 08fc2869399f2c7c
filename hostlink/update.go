package hostlink

import "go-mackie/control"

// Kind is what an Update carries.
type Kind int

const (
	KindValue Kind = iota
	KindText
	KindTitle
	KindColor
	KindActivate
	KindDeactivate
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindText:
		return "text"
	case KindTitle:
		return "title"
	case KindColor:
		return "color"
	case KindActivate:
		return "activate"
	case KindDeactivate:
		return "deactivate"
	}
	return "unknown"
}

// Update is one host notification for one session.
type Update struct {
	Session string
	Kind    Kind
	Param   string

	Value     float64
	Text      string
	Units     string
	Title     string
	Secondary string
	Color     control.Color
	Active    bool
}

// Host is the host collaborator as seen from the surface.
type Host interface {
	// Updates delivers host notifications in arrival order.
	Updates() <-chan Update

	// Set sends a surface-originated value to the host.
	Set(session, param string, value float64) error

	Close() error
}
