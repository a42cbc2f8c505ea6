//go:build !linux

package clipboard

import "errors"

var errNoOwner = errors.New("multi-format clipboard owner is only available on Linux/Wayland")

func spawnOwner(offers []Offer) error {
	return errNoOwner
}

// Serve is not used on non-Linux platforms.
func Serve(offers []Offer) error {
	return errNoOwner
}
