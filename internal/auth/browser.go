package auth

import (
	"os/exec"
	"runtime"
)

// openBrowser asks the desktop environment to open url.
func openBrowser(url string) error {
	var name string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name = "rundll32"
		args = []string{"url.dll,FileProtocolHandler"}
	default:
		name = "xdg-open"
	}

	cmd := exec.Command(name, append(args, url)...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the opener without blocking the flow.
	go cmd.Wait()
	return nil
}
