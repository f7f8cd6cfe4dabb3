// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package display

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/internal/viz"
)

var testArtifacts = []viz.Artifact{
	{Name: "keywords_2301.07041.png", Kind: viz.KindKeywords, Title: "Keywords: 2301.07041", PNG: []byte("png-1")},
	{Name: "paper_links.png", Kind: viz.KindLinks, Title: "Paper Links", PNG: []byte("png-2")},
}

func get(t *testing.T, url string) (int, string, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(body)
}

func TestGallery(t *testing.T) {
	ts := httptest.NewServer(NewGallery(testArtifacts, zerolog.Nop()))
	defer ts.Close()

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantType string
		wantBody string
	}{
		{"index lists artifacts", "/", http.StatusOK, "text/html; charset=utf-8", `src="/artifacts/keywords_2301.07041.png"`},
		{"artifact bytes", "/artifacts/paper_links.png", http.StatusOK, "image/png", "png-2"},
		{"unknown artifact", "/artifacts/nope.png", http.StatusNotFound, "", ""},
		{"unknown route", "/other", http.StatusNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ctype, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, ctype)
			}
			assert.Contains(t, body, tt.wantBody)
		})
	}
}

func TestGallery_EmptyIndex(t *testing.T) {
	ts := httptest.NewServer(NewGallery(nil, zerolog.Nop()))
	defer ts.Close()

	code, _, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "No artifacts.")
}

type fakeStarter struct {
	name string
	args []string
	err  error
}

func (f *fakeStarter) Start(name string, args ...string) error {
	f.name = name
	f.args = args
	return f.err
}

func TestOpener_Command(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantErr  bool
	}{
		{"darwin", "open", false},
		{"linux", "xdg-open", false},
		{"windows", "rundll32", false},
		{"plan9", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			o := &Opener{goos: tt.goos, start: &fakeStarter{}}
			name, args, err := o.Command("http://127.0.0.1:1234/")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, "http://127.0.0.1:1234/", args[len(args)-1])
		})
	}
}

func TestOpener_Open(t *testing.T) {
	fs := &fakeStarter{}
	o := &Opener{goos: "linux", start: fs}
	require.NoError(t, o.Open("/tmp/x.png"))
	assert.Equal(t, "xdg-open", fs.name)
	assert.Equal(t, []string{"/tmp/x.png"}, fs.args)

	fs.err = errors.New("not found")
	assert.ErrorIs(t, o.Open("/tmp/x.png"), fs.err)
}

func TestViewer_ShowBlocksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fs := &fakeStarter{}
	var served string
	v := &Viewer{
		Addr:   "127.0.0.1:0",
		Opener: &Opener{goos: "linux", start: fs},
		Logger: zerolog.Nop(),
		Ready: func(url string) {
			_, _, served = get(t, url+"artifacts/keywords_2301.07041.png")
			cancel()
		},
	}

	done := make(chan error, 1)
	go func() { done <- v.Show(ctx, testArtifacts) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Show did not return after cancel")
	}
	assert.Equal(t, "png-1", served)
	assert.Equal(t, "xdg-open", fs.name)
	assert.Contains(t, fs.args[0], "http://127.0.0.1:")
}

func TestViewer_ListenError(t *testing.T) {
	v := &Viewer{Addr: "256.0.0.1:0", Logger: zerolog.Nop()}
	assert.Error(t, v.Show(context.Background(), testArtifacts))
}
