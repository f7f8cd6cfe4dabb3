package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/fetch"
)

var downloadCmd = &cobra.Command{
	Use:   "download <list-file>",
	Short: "Download papers listed by abstract-page URL",
	Long: `Download reads a newline-delimited list of abstract-page URLs
(e.g. https://arxiv.org/abs/2301.07041), derives each document URL, and saves
the PDFs into the dataset directory as {identifier}.pdf. Blank lines and
lines starting with # are ignored. Malformed entries and failed downloads
are logged and skipped; existing files are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	f := downloadCmd.Flags()
	f.String("dataset", "dataset", "directory that receives the PDFs")
	f.Bool("verify-pdf", false, "reject downloads that do not open as a PDF")
	f.Duration("timeout", 0, "per-request HTTP timeout (0 means none)")

	mustBind("fetch.dataset_dir", f.Lookup("dataset"))
	mustBind("fetch.verify_pdf", f.Lookup("verify-pdf"))
	mustBind("fetch.timeout", f.Lookup("timeout"))

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	urls, err := fetch.ReadList(args[0])
	if err != nil {
		return err
	}

	client := &http.Client{
		Timeout: cfg.Fetch.Timeout,
	}

	ctx := cmd.Context()
	report := fetch.DownloadAll(ctx, client, urls, cfg.Fetch, logger, metrics)
	if err := ctx.Err(); err != nil {
		return err
	}
	if report.HasFailures() {
		return fmt.Errorf("%d paper(s) failed download", len(report.Failures))
	}
	return nil
}
