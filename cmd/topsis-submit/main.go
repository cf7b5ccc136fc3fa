// Command topsis-submit fills the upload form from flags and submits it to a
// running TOPSIS server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/MikeSquared-Agency/Topsis/internal/client"
	"github.com/MikeSquared-Agency/Topsis/internal/config"
	"github.com/MikeSquared-Agency/Topsis/internal/form"
	"github.com/MikeSquared-Agency/Topsis/internal/upload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// recorder keeps the last response so the result can be downloaded.
type recorder struct {
	form.Uploader
	last *upload.Response
}

func (r *recorder) Upload(ctx context.Context, in form.Input) (*upload.Response, error) {
	resp, err := r.Uploader.Upload(ctx, in)
	r.last = resp
	return resp, err
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("topsis-submit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file")
	server := fs.String("server", "", "server base URL (default from config)")
	file := fs.String("file", "", "CSV file to analyse")
	weights := fs.String("weights", "", `comma-separated weights, e.g. "1,1,1,1"`)
	impacts := fs.String("impacts", "", `comma-separated impacts, e.g. "+,+,-,+"`)
	email := fs.String("email", "", "address to email the result to")
	out := fs.String("out", "", "write the results page here instead of stdout")
	download := fs.String("download", "", "save the result CSV into this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return err
	}
	if *server != "" {
		cfg.Client.BaseURL = *server
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	results := io.Writer(stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(stderr, "out: %v\n", err)
			return err
		}
		defer f.Close()
		results = f
	}

	ui := &termUI{
		weights: *weights,
		impacts: *impacts,
		email:   *email,
		label:   "Calculate TOPSIS",
		msgs:    stderr,
	}
	panel := &resultsPanel{out: results}
	httpClient := client.NewHTTPClient(cfg.Client.BaseURL, cfg.ClientTimeout())
	rec := &recorder{Uploader: httpClient}

	ctrl := form.NewController(form.Elements{
		Form:      ui,
		Submit:    ui,
		Messages:  ui,
		Results:   panel,
		FileLabel: ui,
	}, rec, form.WithDismissAfter(cfg.DismissAfter()), form.WithLogger(logger))

	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(stderr, "file: %v\n", err)
			return err
		}
		picked := &form.File{Name: filepath.Base(*file), Data: data}
		ui.file = picked
		ctrl.FileChanged(picked)
	}

	if err := ctrl.Submit(ctx); err != nil {
		return err
	}
	if ui.lastKind != form.MessageSuccess {
		return errors.New("submission did not succeed")
	}

	if *download != "" && rec.last != nil {
		path := filepath.Join(*download, rec.last.ResultFile)
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(stderr, "download: %v\n", err)
			return err
		}
		defer f.Close()
		if _, err := httpClient.Download(ctx, rec.last.ResultFile, f); err != nil {
			fmt.Fprintf(stderr, "download: %v\n", err)
			return err
		}
		fmt.Fprintf(stderr, "Saved %s\n", path)
	}
	return nil
}
