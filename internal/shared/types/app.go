package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownApp is returned when an app name does not match any AppID.
var ErrUnknownApp = errors.New("unknown app")

// AppID identifies a hostable app. The set is closed; the zero value is Terminal.
type AppID int

const (
	Terminal AppID = iota
	Browser
	Library
	Cortex
	Settings
	FileManager
	Store
	AppGrid
	Editor
	Desktop
	Spotify
	Turntable
)

var appNames = [...]string{
	Terminal:    "Terminal",
	Browser:     "Browser",
	Library:     "Library",
	Cortex:      "Cortex",
	Settings:    "Settings",
	FileManager: "FileManager",
	Store:       "Store",
	AppGrid:     "AppGrid",
	Editor:      "Editor",
	Desktop:     "Desktop",
	Spotify:     "Spotify",
	Turntable:   "Turntable",
}

// AllApps returns every AppID in declaration order.
func AllApps() []AppID {
	apps := make([]AppID, len(appNames))
	for i := range appNames {
		apps[i] = AppID(i)
	}
	return apps
}

// Valid reports whether id is one of the declared apps.
func (id AppID) Valid() bool {
	return id >= 0 && int(id) < len(appNames)
}

// String returns the canonical app name
func (id AppID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("AppID(%d)", int(id))
	}
	return appNames[id]
}

// IsRepo reports whether the app is shown in the dock's repository group.
func (id AppID) IsRepo() bool {
	return id == Desktop || id == FileManager
}

// ParseAppID resolves an app name, case-insensitively.
func ParseAppID(name string) (AppID, error) {
	for i, n := range appNames {
		if strings.EqualFold(n, name) {
			return AppID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownApp, name)
}

// MarshalText encodes the app by name.
func (id AppID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownApp, int(id))
	}
	return []byte(id.String()), nil
}

// UnmarshalText decodes an app name.
func (id *AppID) UnmarshalText(text []byte) error {
	parsed, err := ParseAppID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
