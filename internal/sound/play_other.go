//go:build !darwin
// +build !darwin

package sound

import "github.com/aayushbajaj/clakr/internal/clicker"

func startPlayback(string) error {
	return clicker.ErrUnsupported
}
