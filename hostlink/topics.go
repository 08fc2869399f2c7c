package hostlink

import (
	"encoding/json"
	"fmt"
	"strings"

	"go-mackie/control"
)

// DefaultPrefix is the topic prefix when none is configured.
const DefaultPrefix = "mackie"

// Topics builds and parses host topics under one prefix.
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultPrefix
	}
	return strings.TrimSuffix(t.Prefix, "/")
}

// Param returns the topic of one parameter field.
//
// Example: mackie/song1/param/strip/3/volume/value
func (t Topics) Param(session, param string, kind Kind) string {
	return fmt.Sprintf("%s/%s/param/%s/%s", t.prefix(), session, param, kind)
}

// Set returns the outbound topic for a surface-originated value.
func (t Topics) Set(session, param string) string {
	return fmt.Sprintf("%s/%s/param/%s/set", t.prefix(), session, param)
}

// Lifecycle returns the activate or deactivate topic of a session.
func (t Topics) Lifecycle(session string, kind Kind) string {
	return fmt.Sprintf("%s/%s/%s", t.prefix(), session, kind)
}

// Subscription returns the wildcard covering every inbound topic.
func (t Topics) Subscription() string {
	return t.prefix() + "/#"
}

type valuePayload struct {
	Value float64 `json:"value"`
}

type textPayload struct {
	Text  string `json:"text"`
	Units string `json:"units,omitempty"`
}

type titlePayload struct {
	Title     string `json:"title"`
	Secondary string `json:"secondary,omitempty"`
}

type colorPayload struct {
	R      float64 `json:"r"`
	G      float64 `json:"g"`
	B      float64 `json:"b"`
	A      float64 `json:"a"`
	Active bool    `json:"active"`
}

// Decode turns an inbound message into an Update. Outbound set topics are
// rejected with ErrBadTopic so a client never consumes its own writes.
func (t Topics) Decode(topic string, payload []byte) (Update, error) {
	rest, ok := strings.CutPrefix(topic, t.prefix()+"/")
	if !ok {
		return Update{}, fmt.Errorf("%w: %s", ErrBadTopic, topic)
	}
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" {
		return Update{}, fmt.Errorf("%w: %s", ErrBadTopic, topic)
	}
	u := Update{Session: parts[0]}

	if len(parts) == 2 {
		switch parts[1] {
		case "activate":
			u.Kind = KindActivate
		case "deactivate":
			u.Kind = KindDeactivate
		default:
			return Update{}, fmt.Errorf("%w: %s", ErrBadTopic, topic)
		}
		return u, nil
	}

	if parts[1] != "param" || len(parts) < 4 {
		return Update{}, fmt.Errorf("%w: %s", ErrBadTopic, topic)
	}
	u.Param = strings.Join(parts[2:len(parts)-1], "/")

	var err error
	switch parts[len(parts)-1] {
	case "value":
		u.Kind = KindValue
		var p valuePayload
		err = json.Unmarshal(payload, &p)
		u.Value = p.Value
	case "text":
		u.Kind = KindText
		var p textPayload
		err = json.Unmarshal(payload, &p)
		u.Text, u.Units = p.Text, p.Units
	case "title":
		u.Kind = KindTitle
		var p titlePayload
		err = json.Unmarshal(payload, &p)
		u.Title, u.Secondary = p.Title, p.Secondary
	case "color":
		u.Kind = KindColor
		var p colorPayload
		err = json.Unmarshal(payload, &p)
		u.Color = control.Color{R: p.R, G: p.G, B: p.B, A: p.A}
		u.Active = p.Active
	default:
		return Update{}, fmt.Errorf("%w: %s", ErrBadTopic, topic)
	}
	if err != nil {
		return Update{}, fmt.Errorf("%w: %s: %w", ErrBadPayload, topic, err)
	}
	return u, nil
}

// Encode returns the topic and payload that publish u. It is the inverse of
// Decode and is used by hosts and tools that feed the surface.
func (t Topics) Encode(u Update) (string, []byte, error) {
	var p any
	switch u.Kind {
	case KindActivate, KindDeactivate:
		return t.Lifecycle(u.Session, u.Kind), nil, nil
	case KindValue:
		p = valuePayload{Value: u.Value}
	case KindText:
		p = textPayload{Text: u.Text, Units: u.Units}
	case KindTitle:
		p = titlePayload{Title: u.Title, Secondary: u.Secondary}
	case KindColor:
		p = colorPayload{R: u.Color.R, G: u.Color.G, B: u.Color.B, A: u.Color.A, Active: u.Active}
	default:
		return "", nil, fmt.Errorf("%w: kind %d", ErrBadPayload, u.Kind)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", nil, err
	}
	return t.Param(u.Session, u.Param, u.Kind), data, nil
}

// EncodeSet returns the payload of an outbound set.
func EncodeSet(value float64) []byte {
	data, _ := json.Marshal(valuePayload{Value: value})
	return data
}
