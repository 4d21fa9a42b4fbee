//go:build darwin
// +build darwin

package clickpost

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices

#include <CoreGraphics/CoreGraphics.h>
#include <ApplicationServices/ApplicationServices.h>

static CGEventSourceRef clickSource = NULL;

static int postLeftClick() {
    if (clickSource == NULL) {
        clickSource = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
    }

    CGEventRef probe = CGEventCreate(NULL);
    if (probe == NULL) {
        return 0;
    }
    CGPoint point = CGEventGetLocation(probe);
    CFRelease(probe);

    CGEventRef down = CGEventCreateMouseEvent(clickSource, kCGEventLeftMouseDown, point, kCGMouseButtonLeft);
    CGEventRef up = CGEventCreateMouseEvent(clickSource, kCGEventLeftMouseUp, point, kCGMouseButtonLeft);
    if (down == NULL || up == NULL) {
        if (down != NULL) CFRelease(down);
        if (up != NULL) CFRelease(up);
        return 0;
    }
    CGEventPost(kCGHIDEventTap, down);
    CGEventPost(kCGHIDEventTap, up);
    CFRelease(down);
    CFRelease(up);
    return 1;
}

static int checkClickAccessibilityPermissions() {
    return AXIsProcessTrusted();
}
*/
import "C"
import (
	"errors"
	"time"
)

// Poster implements clicker.Emitter with CGEventPost. Clicks land wherever
// the pointer is; the pointer is never moved.
type Poster struct {
	trust *trustCache
}

func New() *Poster {
	return &Poster{trust: &trustCache{
		check: func() bool { return C.checkClickAccessibilityPermissions() != 0 },
		now:   time.Now,
	}}
}

func (p *Poster) Click() error {
	if !p.trust.ok() {
		return ErrNotTrusted
	}
	if C.postLeftClick() == 0 {
		return errors.New("failed to create mouse event")
	}
	return nil
}
