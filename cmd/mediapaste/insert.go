package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sipeed/mediapaste/pkg/accept"
	"github.com/sipeed/mediapaste/pkg/attachments"
	"github.com/sipeed/mediapaste/pkg/command"
	"github.com/sipeed/mediapaste/pkg/config"
	"github.com/sipeed/mediapaste/pkg/logger"
	"github.com/sipeed/mediapaste/pkg/media"
	"github.com/sipeed/mediapaste/pkg/reconcile"
	"github.com/sipeed/mediapaste/pkg/textbuf"
	"github.com/sipeed/mediapaste/pkg/upload"
	"github.com/spf13/cobra"
)

type insertOptions struct {
	doc      string
	at       int
	accept   string
	multiple bool
	resolver string
	dryRun   bool
}

func newInsertCommand(root *rootOptions) *cobra.Command {
	opts := &insertOptions{at: -1}

	cmd := &cobra.Command{
		Use:   "insert FILE...",
		Short: "Upload files and insert image references into a markdown document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			policy := cfg.Policy()
			if cmd.Flags().Changed("accept") {
				policy.Accept = opts.accept
			}
			if cmd.Flags().Changed("multiple") {
				policy.Multiple = opts.multiple
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runInsert(ctx, cmd.OutOrStdout(), cfg, policy, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.doc, "doc", "", "markdown document to edit (required)")
	cmd.Flags().IntVar(&opts.at, "at", -1, "byte offset of the cursor (default: end of document)")
	cmd.Flags().StringVar(&opts.accept, "accept", "", "accepted types, e.g. \"image/*,.pdf\"")
	cmd.Flags().BoolVar(&opts.multiple, "multiple", false, "process every file instead of only the first")
	cmd.Flags().StringVar(&opts.resolver, "resolver", "store", "where uploads go: store or http")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the diff without writing the document")
	_ = cmd.MarkFlagRequired("doc")
	return cmd
}

func runInsert(ctx context.Context, out io.Writer, cfg *config.Config, policy accept.Policy, opts *insertOptions, paths []string) error {
	original, err := os.ReadFile(opts.doc)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read document: %w", err)
	}

	files := make(media.Files, 0, len(paths))
	for _, p := range paths {
		payload, err := media.PayloadFromFile(p)
		if err != nil {
			return err
		}
		files = append(files, payload)
	}

	resolver, err := buildResolver(cfg, opts.resolver)
	if err != nil {
		return err
	}

	caret := opts.at
	if caret < 0 {
		caret = len(original)
	}
	buf := textbuf.NewMemory(string(original), caret)

	report, execErr := command.SaveImage{}.Execute(ctx,
		&command.Context{
			Event:  &media.Event{Kind: media.EventFileInput, Files: files},
			Policy: policy,
		},
		command.Options{
			Buffer:          buf,
			Resolver:        resolver,
			Label:           cfg.Editor.UploadingLabel,
			Alt:             cfg.Editor.ImageAlt,
			ContinueOnError: cfg.Editor.ContinueOnError,
		})

	for _, res := range report.Results {
		fmt.Fprintf(out, "%-9s %s %s\n", res.Outcome, res.Name, res.Reference)
	}

	// A failed payload leaves its placeholder in the buffer. That is fine for
	// a live editor but must never reach the file on disk.
	if execErr != nil {
		logger.WarnCF("cli", "Upload failed, document left unchanged", map[string]interface{}{
			"doc":   opts.doc,
			"error": execErr.Error(),
		})
		return execErr
	}

	updated := buf.Text()
	printDiff(out, string(original), updated)

	if !opts.dryRun && updated != string(original) {
		if err := os.WriteFile(opts.doc, []byte(updated), 0644); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		logger.InfoCF("cli", "Document updated", map[string]interface{}{
			"doc":       opts.doc,
			"processed": len(report.Results),
		})
	}
	return nil
}

func buildResolver(cfg *config.Config, kind string) (reconcile.Resolver, error) {
	switch kind {
	case "store", "":
		store, err := attachments.NewStore(cfg.StorageRoot(), cfg.Storage.BaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "http":
		return upload.NewClient(cfg.Upload.Endpoint, cfg.Upload.Token, cfg.UploadTimeout()), nil
	}
	return nil, fmt.Errorf("unknown resolver %q (want store or http)", kind)
}

func printDiff(out io.Writer, before, after string) {
	for _, line := range textbuf.Changed(textbuf.Diff(before, after)) {
		switch line.Type {
		case textbuf.LineAdded:
			fmt.Fprintf(out, "+%4d  %s\n", line.NewLine, line.Text)
		case textbuf.LineRemoved:
			fmt.Fprintf(out, "-%4d  %s\n", line.OldLine, line.Text)
		}
	}
}
