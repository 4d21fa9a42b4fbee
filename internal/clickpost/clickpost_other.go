//go:build !darwin
// +build !darwin

package clickpost

import "github.com/aayushbajaj/clakr/internal/clicker"

// Poster cannot post events off macOS; every Click fails.
type Poster struct{}

func New() *Poster { return &Poster{} }

func (p *Poster) Click() error { return clicker.ErrUnsupported }
