package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/batch"
	"github.com/pdiddy/paper-digest/internal/display"
	"github.com/pdiddy/paper-digest/internal/export"
	"github.com/pdiddy/paper-digest/internal/grobid"
	"github.com/pdiddy/paper-digest/internal/viz"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract records from a dataset directory and visualize them",
	Long: `Process sends every PDF in the dataset directory to GROBID, parses the
returned TEI into a record (title, abstract, figure count, links), and renders:

  keywords_{paper_id}.png   one term cloud per paper with an abstract
  figures_per_article.png   figure count per paper
  paper_links.png           outbound links per paper

Artifacts are written to --output, shown in a local gallery with --show, or
both. Records can also be exported as YAML, JSON, or SQLite into --output.
The run stops before processing if GROBID is not reachable.`,
	Args: cobra.NoArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		mustBind("grobid.url", cmd.Flags().Lookup("grobid-url"))
	},
	RunE: runProcess,
}

func init() {
	f := processCmd.Flags()
	f.String("dataset", "dataset", "directory of PDFs to process")
	f.String("output", "", "directory for rendered artifacts and exports")
	f.Bool("show", false, "show artifacts in a local gallery until Ctrl-C")
	f.StringSlice("export", nil, "export records as yaml, json, sqlite (comma-separated; needs --output)")
	f.String("grobid-url", grobid.DefaultURL, "GROBID service base URL")
	f.Duration("timeout", 0, "per-request GROBID timeout (0 means none)")

	mustBind("process.dataset_dir", f.Lookup("dataset"))
	mustBind("process.output_dir", f.Lookup("output"))
	mustBind("process.show", f.Lookup("show"))
	mustBind("process.export", f.Lookup("export"))
	mustBind("grobid.timeout", f.Lookup("timeout"))

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pc := cfg.Process
	if len(pc.Export) > 0 && pc.OutputDir == "" {
		return fmt.Errorf("--export requires --output")
	}

	runID := uuid.NewString()
	log := logger.With().Str("run_id", runID).Logger()
	ctx := cmd.Context()

	client := grobid.NewClient(cfg.Grobid.URL,
		grobid.WithHTTPClient(&http.Client{Timeout: cfg.Grobid.Timeout}),
		grobid.WithAPIKey(cfg.Grobid.APIKey),
		grobid.WithUserAgent(cfg.Grobid.UserAgent),
	)
	if err := client.IsAlive(ctx); err != nil {
		return fmt.Errorf("GROBID at %s is not available (start one with `paper-digest grobid serve`): %w",
			client.BaseURL(), err)
	}
	log.Info().Str("url", client.BaseURL()).Msg("GROBID is alive")

	if err := os.MkdirAll(pc.DatasetDir, 0o755); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}

	result, err := batch.ProcessDirectory(ctx, client, pc.DatasetDir, log, metrics)
	if err != nil {
		return err
	}

	if len(pc.Export) > 0 {
		paths, err := export.Write(ctx, pc.OutputDir, runID, result.Records, pc.Export)
		if err != nil {
			return fmt.Errorf("exporting records: %w", err)
		}
		for _, p := range paths {
			log.Info().Str("path", p).Msg("records exported")
		}
	}

	vc := viz.Config{Show: pc.Show, OutputDir: pc.OutputDir}
	if vc.Enabled() {
		if _, err := viz.Render(ctx, result.Records, vc, display.NewViewer(log), log, metrics); err != nil {
			return err
		}
	} else {
		log.Warn().Msg("neither --show nor --output set; skipping visualization")
	}

	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed extraction", len(result.Failures))
	}
	return nil
}
