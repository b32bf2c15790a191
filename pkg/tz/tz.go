package tz

import (
	"fmt"
	"time"
)

// Default is the location used when none is configured.
const Default = "Europe/Paris"

// Load returns the named IANA location; an empty name means Default and
// "Local" the host's zone.
func Load(name string) (*time.Location, error) {
	if name == "" {
		name = Default
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("tz: load %s: %w", name, err)
	}
	return loc, nil
}
