//go:build !darwin
// +build !darwin

package mousetracker

import (
	"errors"
	"testing"
	"time"

	"github.com/aayushbajaj/clakr/internal/clicker"
)

func TestOnMoveUnsupported(t *testing.T) {
	var _ clicker.PointerWatch = New()

	cancel, err := New().OnMove(func(time.Time) {})
	if !errors.Is(err, clicker.ErrUnsupported) {
		t.Errorf("OnMove() error = %v, want ErrUnsupported", err)
	}
	if cancel != nil {
		t.Error("expected nil cancel func")
	}
}
