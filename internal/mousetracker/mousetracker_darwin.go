//go:build darwin
// +build darwin

// Package mousetracker reports real pointer movement through a listen-only
// Quartz event tap.
package mousetracker

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <CoreGraphics/CoreGraphics.h>
#include <ApplicationServices/ApplicationServices.h>

extern void goMouseMoved();

static CFMachPortRef mouseTap = NULL;

static CGEventRef mouseEventCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon) {
    // The system disables taps that stall; turn it back on.
    if (type == kCGEventTapDisabledByTimeout || type == kCGEventTapDisabledByUserInput) {
        if (mouseTap != NULL) {
            CGEventTapEnable(mouseTap, true);
        }
        return event;
    }
    if (type == kCGEventMouseMoved ||
        type == kCGEventLeftMouseDragged ||
        type == kCGEventRightMouseDragged ||
        type == kCGEventOtherMouseDragged) {
        goMouseMoved();
    }
    return event;
}

static int createMouseTap() {
    CGEventMask eventMask = CGEventMaskBit(kCGEventMouseMoved) |
                            CGEventMaskBit(kCGEventLeftMouseDragged) |
                            CGEventMaskBit(kCGEventRightMouseDragged) |
                            CGEventMaskBit(kCGEventOtherMouseDragged);

    mouseTap = CGEventTapCreate(
        kCGSessionEventTap,
        kCGHeadInsertEventTap,
        kCGEventTapOptionListenOnly,
        eventMask,
        mouseEventCallback,
        NULL
    );
    return mouseTap != NULL;
}

static void setMouseTapEnabled(int enabled) {
    if (mouseTap != NULL) {
        CGEventTapEnable(mouseTap, enabled != 0);
    }
}

static void runMouseTapLoop() {
    CFRunLoopSourceRef runLoopSource = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, mouseTap, 0);
    CFRunLoopAddSource(CFRunLoopGetCurrent(), runLoopSource, kCFRunLoopCommonModes);
    CFRunLoopRun();
}

static int checkMouseAccessibilityPermissions() {
    return AXIsProcessTrusted();
}
*/
import "C"
import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/aayushbajaj/clakr/internal/clicker"
)

var ErrNotTrusted = errors.New("accessibility permissions not granted - please enable in System Preferences > Privacy & Security > Accessibility")

var (
	mu        sync.Mutex
	tapReady  bool
	handler   func(time.Time)
	handlerID uint64
)

//export goMouseMoved
func goMouseMoved() {
	// The callback time stands in for the event's own timestamp.
	now := time.Now()
	// The handler runs under mu so a canceled registration never sees
	// another event once its cancel func returns.
	mu.Lock()
	defer mu.Unlock()
	if handler != nil {
		handler(now)
	}
}

// CheckAccessibilityPermissions returns true if the app has accessibility permissions
func CheckAccessibilityPermissions() bool {
	return C.checkMouseAccessibilityPermissions() != 0
}

// Watch implements clicker.PointerWatch. The event tap is created on first
// use and disabled while no handler is registered.
type Watch struct{}

func New() *Watch { return &Watch{} }

// OnMove registers fn for every pointer move or drag, replacing any previous
// registration.
func (w *Watch) OnMove(fn func(at time.Time)) (clicker.CancelFunc, error) {
	if !CheckAccessibilityPermissions() {
		return nil, ErrNotTrusted
	}

	mu.Lock()
	defer mu.Unlock()
	if err := ensureTapLocked(); err != nil {
		return nil, err
	}
	handlerID++
	id := handlerID
	handler = fn
	C.setMouseTapEnabled(1)

	return func() {
		mu.Lock()
		defer mu.Unlock()
		if handlerID != id {
			return
		}
		handler = nil
		C.setMouseTapEnabled(0)
	}, nil
}

func ensureTapLocked() error {
	if tapReady {
		return nil
	}
	created := make(chan bool, 1)
	go func() {
		// The run loop belongs to this thread for the life of the process.
		runtime.LockOSThread()
		if C.createMouseTap() == 0 {
			created <- false
			return
		}
		created <- true
		C.runMouseTapLoop()
	}()
	if !<-created {
		return errors.New("failed to create mouse event tap")
	}
	tapReady = true
	return nil
}
