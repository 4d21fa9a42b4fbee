//go:build !darwin
// +build !darwin

package mousetracker

import (
	"time"

	"github.com/aayushbajaj/clakr/internal/clicker"
)

// Watch reports no motion on platforms without an event tap. The click
// loop then runs ungated.
type Watch struct{}

func New() *Watch { return &Watch{} }

func (w *Watch) OnMove(func(at time.Time)) (clicker.CancelFunc, error) {
	return nil, clicker.ErrUnsupported
}

// CheckAccessibilityPermissions always reports false off macOS.
func CheckAccessibilityPermissions() bool { return false }
