//go:build darwin
// +build darwin

package main

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa

#import <Cocoa/Cocoa.h>

// AppKit must be driven from the main thread.
static void ensureMainThread() {
    if (![NSThread isMainThread]) {
        dispatch_sync(dispatch_get_main_queue(), ^{});
    }
}
*/
import "C"

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"os/user"
	"runtime"
	"syscall"

	"github.com/caseymrm/menuet"

	"github.com/aayushbajaj/clakr/internal/app"
	"github.com/aayushbajaj/clakr/internal/menubar"
	"github.com/aayushbajaj/clakr/internal/mousetracker"
)

const Version = "0.1.0"

func init() {
	// The main goroutine must stay on the main OS thread for AppKit.
	runtime.LockOSThread()
}

func main() {
	C.ensureMainThread()

	// HOME is unset when launched through launchctl or open.
	if os.Getenv("HOME") == "" {
		if u, err := user.Current(); err == nil {
			os.Setenv("HOME", u.HomeDir)
		}
	}

	a, err := app.New(app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start clakr: %v\n", err)
		os.Exit(1)
	}
	a.Logger.Info("starting clakr menu bar app", "version", Version)

	// Without the permission clicks fail and motion is not observed; the
	// controller reports both, so keep running.
	if !mousetracker.CheckAccessibilityPermissions() {
		a.Logger.Warn("accessibility permissions not granted")
		showPermissionAlert()
	}

	quit := func() {
		a.Logger.Info("shutting down")
		a.Close()
		os.Exit(0)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		quit()
	}()

	bar := menubar.New(a.Controller, a.Store, a.Prefs, a.Logger)
	bar.Quit = quit
	bar.Extra = func() []menuet.MenuItem {
		return []menuet.MenuItem{{Text: "About", Clicked: showAbout}}
	}

	// Blocks in the AppKit event loop.
	bar.Run()
}

func showAbout() {
	go func() {
		cmd := exec.Command("open", "https://github.com/aayushbajaj/clakr")
		cmd.Run()
	}()

	menuet.App().Alert(menuet.Alert{
		MessageText:     "Clakr",
		InformativeText: fmt.Sprintf("Version %s\n\nA configurable autoclicker.\n\nGitHub: github.com/aayushbajaj/clakr", Version),
		Buttons:         []string{"OK"},
	})
}

func showPermissionAlert() {
	fmt.Println("WARNING: Accessibility permissions not granted.")
	fmt.Println("")
	fmt.Println("Clakr needs them to post clicks and watch pointer motion:")
	fmt.Println("1. Open System Settings > Privacy & Security > Accessibility")
	fmt.Println("2. Add this application to the list")
	fmt.Println("3. Restart the application")
}
