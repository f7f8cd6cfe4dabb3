// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container detects a container runtime and runs the extraction
// service image with it.
package container

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

const (
	binDocker = "docker"
	binPodman = "podman"

	// DefaultImage is the GROBID image run by Serve.
	DefaultImage = "lfoppiano/grobid:0.8.0"
	// ServicePort is the port GROBID listens on inside the container.
	ServicePort = 8070
)

// Runtime provides container operations: checking availability, verifying
// and pulling images, and serving a container in the foreground.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available() bool

	// ImageExists checks whether the named image exists locally.
	// Returns nil when the image is found, or an error describing the failure.
	ImageExists(image string) error

	// Pull fetches image from its registry, streaming progress to out.
	Pull(ctx context.Context, image string, out io.Writer) error

	// Serve runs image in the foreground, publishing ServicePort on
	// hostPort, until the container exits or ctx is cancelled.
	Serve(ctx context.Context, image string, hostPort int, stdout, stderr io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunStreaming(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunStreaming(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// runtime implements Runtime for a specific container binary. Both Docker
// and Podman share the same logic; they differ only in binary name and the
// subcommand used to check image existence.
type runtime struct {
	bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	exec          executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *runtime) ImageExists(image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Pull(ctx context.Context, image string, out io.Writer) error {
	if err := r.exec.RunStreaming(ctx, r.bin, []string{"pull", image}, out, out); err != nil {
		return fmt.Errorf("pulling %s with %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Serve(ctx context.Context, image string, hostPort int, stdout, stderr io.Writer) error {
	args := ServeArgs(image, hostPort)
	if err := r.exec.RunStreaming(ctx, r.bin, args, stdout, stderr); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

// ServeArgs returns the run arguments for serving image on hostPort.
func ServeArgs(image string, hostPort int) []string {
	publish := strconv.Itoa(hostPort) + ":" + strconv.Itoa(ServicePort)
	return []string{"run", "--rm", "--init", "-p", publish, image}
}

// EnsureImage pulls image unless it already exists locally.
func EnsureImage(ctx context.Context, rt Runtime, image string, out io.Writer) error {
	if rt.ImageExists(image) == nil {
		return nil
	}
	return rt.Pull(ctx, image, out)
}

func newDockerRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		exec:          exec,
	}
}

func newPodmanRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		exec:          exec,
	}
}

var defaultExec = &osExecutor{}

// DetectRuntime tries docker first, falls back to podman. Returns an error
// if neither runtime is available.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(defaultExec)
}

func detectRuntime(exec executor) (Runtime, error) {
	docker := newDockerRuntime(exec)
	if docker.Available() {
		return docker, nil
	}

	podman := newPodmanRuntime(exec)
	if podman.Available() {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
