// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package display

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/viz"
)

const shutdownTimeout = 5 * time.Second

// Viewer implements viz.Shower with a loopback gallery server.
type Viewer struct {
	// Addr is the listen address; port 0 picks a free port.
	Addr string
	// Opener launches the browser. Nil leaves opening to the user.
	Opener *Opener
	// Ready, when set, receives the gallery URL once it is serving.
	Ready  func(url string)
	Logger zerolog.Logger
}

// NewViewer returns a Viewer on a random loopback port using the system
// opener.
func NewViewer(logger zerolog.Logger) *Viewer {
	return &Viewer{Addr: "127.0.0.1:0", Opener: NewOpener(), Logger: logger}
}

// Show serves artifacts, opens the gallery, and blocks until ctx is
// cancelled.
func (v *Viewer) Show(ctx context.Context, artifacts []viz.Artifact) error {
	ln, err := net.Listen("tcp", v.Addr)
	if err != nil {
		return fmt.Errorf("listen on gallery address: %w", err)
	}

	srv := &http.Server{
		Handler:           NewGallery(artifacts, v.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	url := "http://" + ln.Addr().String() + "/"
	v.Logger.Info().Str("url", url).Int("artifacts", len(artifacts)).Msg("gallery serving, press Ctrl-C to exit")
	if v.Opener != nil {
		if err := v.Opener.Open(url); err != nil {
			v.Logger.Warn().Err(err).Msg("could not open viewer")
		}
	}
	if v.Ready != nil {
		v.Ready(url)
	}

	select {
	case <-ctx.Done():
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gallery server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down gallery: %w", err)
	}
	return nil
}
