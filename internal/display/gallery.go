// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package display shows rendered artifacts interactively: a small gallery
// served on loopback and opened in the platform viewer.
package display

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/viz"
)

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>paper-digest</title>
<style>body{font-family:sans-serif;margin:2em}figure{margin:0 0 2em}img{max-width:100%;border:1px solid #ddd}</style>
</head>
<body>
<h1>paper-digest</h1>
{{- if not .}}
<p>No artifacts.</p>
{{- end}}
{{- range .}}
<figure><img src="/artifacts/{{.Name}}" alt="{{.Title}}"><figcaption>{{.Title}}</figcaption></figure>
{{- end}}
</body>
</html>
`))

// Gallery serves a fixed set of artifacts over HTTP.
type Gallery struct {
	artifacts []viz.Artifact
	byName    map[string]viz.Artifact
	router    chi.Router
	logger    zerolog.Logger
}

// NewGallery builds the router for artifacts. Routes:
//
//	GET /                  HTML index with one image per artifact
//	GET /artifacts/{name}  PNG bytes, 404 for unknown names
func NewGallery(artifacts []viz.Artifact, logger zerolog.Logger) *Gallery {
	g := &Gallery{
		artifacts: artifacts,
		byName:    make(map[string]viz.Artifact, len(artifacts)),
		logger:    logger.With().Str("component", "gallery").Logger(),
	}
	for _, a := range artifacts {
		g.byName[a.Name] = a
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", g.index)
	r.Get("/artifacts/{name}", g.artifact)
	g.router = r
	return g
}

// ServeHTTP implements http.Handler.
func (g *Gallery) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

func (g *Gallery) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, g.artifacts); err != nil {
		g.logger.Error().Err(err).Msg("rendering index")
	}
}

func (g *Gallery) artifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	a, ok := g.byName[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(a.PNG)))
	if _, err := w.Write(a.PNG); err != nil {
		g.logger.Debug().Err(err).Str("name", name).Msg("writing artifact")
	}
}
