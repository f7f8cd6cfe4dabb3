// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package display

import (
	"fmt"
	"os/exec"
	"runtime"
)

// starter launches a command without waiting for it.
type starter interface {
	Start(name string, args ...string) error
}

type execStarter struct{}

func (execStarter) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Opener opens URLs and files with the platform viewer.
type Opener struct {
	goos  string
	start starter
}

// NewOpener returns an Opener for the running platform.
func NewOpener() *Opener {
	return &Opener{goos: runtime.GOOS, start: execStarter{}}
}

// Command returns the program and arguments used to open target.
func (o *Opener) Command(target string) (string, []string, error) {
	switch o.goos {
	case "darwin":
		return "open", []string{target}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", o.goos)
	}
}

// Open launches the viewer for target and returns without waiting for it.
func (o *Opener) Open(target string) error {
	name, args, err := o.Command(target)
	if err != nil {
		return err
	}
	if err := o.start.Start(name, args...); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	return nil
}
