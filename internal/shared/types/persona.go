package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPersona is returned when a persona name does not match.
var ErrUnknownPersona = errors.New("unknown persona")

// Persona is the active "reality" of the shell. Windows remember the persona
// they were opened under.
type Persona int

const (
	PersonaDesktop Persona = iota
	PersonaAuto
	PersonaConsole
	PersonaFireplace
	PersonaKiosk
	PersonaMobile
	PersonaRobot
	PersonaServer
	PersonaSmartHome
	PersonaTV
)

var personaNames = [...]string{
	PersonaDesktop:   "Desktop",
	PersonaAuto:      "Auto",
	PersonaConsole:   "Console",
	PersonaFireplace: "Fireplace",
	PersonaKiosk:     "Kiosk",
	PersonaMobile:    "Mobile",
	PersonaRobot:     "Robot",
	PersonaServer:    "Server",
	PersonaSmartHome: "Home",
	PersonaTV:        "TV",
}

// AllPersonas returns every persona in declaration order.
func AllPersonas() []Persona {
	out := make([]Persona, len(personaNames))
	for i := range personaNames {
		out[i] = Persona(i)
	}
	return out
}

// Valid reports whether p is a declared persona.
func (p Persona) Valid() bool {
	return p >= 0 && int(p) < len(personaNames)
}

func (p Persona) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Persona(%d)", int(p))
	}
	return personaNames[p]
}

// ParsePersona resolves a persona by display name. "SmartHome" is accepted as
// an alias of "Home".
func ParsePersona(name string) (Persona, error) {
	if strings.EqualFold(name, "SmartHome") {
		return PersonaSmartHome, nil
	}
	for i, n := range personaNames {
		if strings.EqualFold(n, name) {
			return Persona(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPersona, name)
}

// MarshalText encodes the persona by name.
func (p Persona) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPersona, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a persona name.
func (p *Persona) UnmarshalText(text []byte) error {
	parsed, err := ParsePersona(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Decode implements envconfig.Decoder.
func (p *Persona) Decode(value string) error {
	return p.UnmarshalText([]byte(value))
}
