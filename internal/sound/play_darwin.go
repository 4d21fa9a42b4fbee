//go:build darwin
// +build darwin

package sound

import "os/exec"

func startPlayback(path string) error {
	cmd := exec.Command("afplay", path)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
