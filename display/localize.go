package display

import "strings"

// DefaultValues maps localized value tokens to ASCII text the strip can show.
var DefaultValues = map[string]string{
	"Éteint":    "Off",
	"Allumé":    "On",
	"Activé":    "On",
	"Désactivé": "Off",
	"Ein":       "On",
	"Aus":       "Off",
	"Encendido": "On",
	"Apagado":   "Off",
	"Acceso":    "On",
	"Spento":    "Off",
}

// DefaultTitles maps localized parameter names to short ASCII names.
var DefaultTitles = map[string]string{
	"Lautstärke":  "Volume",
	"Volumen":     "Volume",
	"Panorama":    "Pan",
	"Panoramique": "Pan",
	"Balance":     "Pan",
	"Sélection":   "Select",
	"Muet":        "Mute",
	"Stumm":       "Mute",
	"Silencio":    "Mute",
	"Enregistrer": "Rec",
	"Aufnahme":    "Rec",
}

// Localizer replaces known localized tokens. Lookups are exact after
// trimming; unknown text passes through unchanged.
type Localizer struct {
	values map[string]string
	titles map[string]string
}

// NewLocalizer merges values and titles over the defaults.
func NewLocalizer(values, titles map[string]string) *Localizer {
	return &Localizer{
		values: merge(DefaultValues, values),
		titles: merge(DefaultTitles, titles),
	}
}

func merge(base, over map[string]string) map[string]string {
	m := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		m[k] = v
	}
	for k, v := range over {
		m[k] = v
	}
	return m
}

// Value normalizes a display value.
func (l *Localizer) Value(text string) string {
	if l == nil {
		return text
	}
	return lookup(l.values, text)
}

// Title normalizes a parameter name.
func (l *Localizer) Title(text string) string {
	if l == nil {
		return text
	}
	return lookup(l.titles, text)
}

func lookup(m map[string]string, text string) string {
	if v, ok := m[strings.TrimSpace(text)]; ok {
		return v
	}
	return text
}
