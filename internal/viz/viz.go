// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package viz turns paper records into summary images: one term cloud per
// paper, a figure-count bar chart, and a links table. Builders are pure;
// renderers draw the built models to PNG with gonum/plot.
package viz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/observability"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Artifact kinds, used in metric labels.
const (
	KindKeywords = "keywords"
	KindFigures  = "figures"
	KindLinks    = "links"
)

const (
	figureChartFile = "figures_per_article.png"
	linksTableFile  = "paper_links.png"
)

// Config selects where artifacts go. Show and OutputDir are independent;
// both may be set.
type Config struct {
	// Show displays the artifacts interactively through a Shower.
	Show bool
	// OutputDir, when non-empty, receives one PNG per artifact.
	OutputDir string
}

// Enabled reports whether any output is selected.
func (c Config) Enabled() bool {
	return c.Show || c.OutputDir != ""
}

// Artifact is one rendered image.
type Artifact struct {
	// Name is the file name the artifact is saved under.
	Name string
	// Kind is one of KindKeywords, KindFigures, KindLinks.
	Kind string
	// Title is a human-readable caption.
	Title string
	// PNG holds the encoded image.
	PNG []byte
}

// Shower displays rendered artifacts and returns when the viewer closes.
type Shower interface {
	Show(ctx context.Context, artifacts []Artifact) error
}

// KeywordsFile returns the file name of a paper's term cloud.
func KeywordsFile(paperID string) string {
	return "keywords_" + paperID + ".png"
}

// Render builds and draws every artifact for records, writes them to
// cfg.OutputDir when set, and hands them to shower when cfg.Show is set.
// Records are not modified.
func Render(ctx context.Context, records []types.PaperRecord, cfg Config, shower Shower, log zerolog.Logger, m *observability.Metrics) ([]Artifact, error) {
	if cfg.Show && shower == nil {
		return nil, fmt.Errorf("show requested without a viewer")
	}

	artifacts, err := Draw(ctx, records, log)
	if err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		m.RecordArtifact(a.Kind)
	}

	if cfg.OutputDir != "" {
		if err := Save(cfg.OutputDir, artifacts); err != nil {
			return artifacts, err
		}
		log.Info().Int("count", len(artifacts)).Str("dir", cfg.OutputDir).Msg("artifacts saved")
	}

	if cfg.Show {
		if err := shower.Show(ctx, artifacts); err != nil {
			return artifacts, fmt.Errorf("showing artifacts: %w", err)
		}
	}
	return artifacts, nil
}

// Draw renders every artifact in order: term clouds, then the figure chart,
// then the links table.
func Draw(ctx context.Context, records []types.PaperRecord, log zerolog.Logger) ([]Artifact, error) {
	var artifacts []Artifact

	for _, c := range KeywordClouds(records) {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}
		png, err := RenderCloud(c)
		if err != nil {
			return artifacts, fmt.Errorf("rendering term cloud for %s: %w", c.PaperID, err)
		}
		log.Debug().Str("paper_id", c.PaperID).Int("terms", len(c.Terms)).Msg("term cloud rendered")
		artifacts = append(artifacts, Artifact{
			Name:  KeywordsFile(c.PaperID),
			Kind:  KindKeywords,
			Title: "Keywords: " + c.PaperID,
			PNG:   png,
		})
	}

	chart := FigureChart(records)
	png, err := RenderBarChart(chart)
	if err != nil {
		return artifacts, fmt.Errorf("rendering figure chart: %w", err)
	}
	artifacts = append(artifacts, Artifact{Name: figureChartFile, Kind: KindFigures, Title: chart.Title, PNG: png})

	table := LinksTable(records)
	png, err = RenderTable(table)
	if err != nil {
		return artifacts, fmt.Errorf("rendering links table: %w", err)
	}
	artifacts = append(artifacts, Artifact{Name: linksTableFile, Kind: KindLinks, Title: table.Title, PNG: png})

	return artifacts, nil
}

// Save writes each artifact to dir under its Name, creating dir if needed.
func Save(dir string, artifacts []Artifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	for _, a := range artifacts {
		path := filepath.Join(dir, a.Name)
		if err := os.WriteFile(path, a.PNG, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
