// Package sound plays the toggle sound effect.
package sound

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const SystemSoundDir = "/System/Library/Sounds"

var ErrNotFound = errors.New("sound not found")

var extensions = []string{".aiff", ".aif", ".wav", ".mp3", ".m4a", ".caf"}

// Player resolves sound names against the system and user sound
// directories. User sounds shadow system sounds of the same name.
type Player struct {
	SystemDir string
	UserDir   string

	start func(path string) error
}

func NewPlayer(userDir string) *Player {
	return &Player{SystemDir: SystemSoundDir, UserDir: userDir, start: startPlayback}
}

// Resolve returns the file for name. name may carry an extension.
func (p *Player) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	for _, dir := range []string{p.UserDir, p.SystemDir} {
		if dir == "" {
			continue
		}
		if filepath.Ext(name) != "" && isFile(filepath.Join(dir, name)) {
			return filepath.Join(dir, name), nil
		}
		for _, ext := range extensions {
			path := filepath.Join(dir, name+ext)
			if isFile(path) {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Play starts playback of name and returns without waiting for it to finish.
func (p *Player) Play(name string) error {
	path, err := p.Resolve(name)
	if err != nil {
		return err
	}
	return p.start(path)
}

// Available lists the sound names found in both directories.
func (p *Player) Available() []string {
	seen := make(map[string]bool)
	for _, dir := range []string{p.UserDir, p.SystemDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !knownExtension(e.Name()) {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func knownExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
