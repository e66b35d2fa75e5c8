package main

import (
	"content-repo/contract"
	"content-repo/domain/upload"
	"content-repo/runtime/workers"
	"content-repo/services"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("invalid usage")

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"init":    initCommand,
	"send":    sendCommand,
	"import":  importCommand,
	"delete":  deleteCommand,
	"list":    listCommand,
	"resume":  resumeCommand,
	"history": historyCommand,
}

func newFlagSet(name string) *pflag.FlagSet {
	return pflag.NewFlagSet(name, pflag.ContinueOnError)
}

// parse returns the single positional upload id when want is true.
func parse(fs *pflag.FlagSet, args []string, want bool) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	if !want {
		return "", nil
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s expects exactly one upload id", errUsage, fs.Name())
	}
	return fs.Arg(0), nil
}

func initCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("init")
	file := fs.StringP("file", "f", "", "file to upload")
	repo := fs.StringP("repo", "r", "", "destination repository id")
	unitType := fs.StringP("type", "t", "", "content unit type id")
	unitKey := fs.StringToString("key", nil, "unit key fields, name=value")
	unitMetadata := fs.StringToString("metadata", nil, "unit metadata fields, name=value")
	override := fs.StringToString("override", nil, "importer configuration overrides, name=value")
	send := fs.Bool("send", false, "start the transfer right away")
	if _, err := parse(fs, args, false); err != nil {
		return err
	}

	source, err := filepath.Abs(*file)
	if err != nil {
		return err
	}
	id, err := a.manager.InitializeUpload(ctx, upload.InitializeRequest{
		SourceFilename: lo.Ternary(*file == "", "", source),
		RepoID:         *repo,
		UnitTypeID:     *unitType,
		UnitKey:        toAnyMap(*unitKey),
		UnitMetadata:   toOptionalMap(fs, "metadata", *unitMetadata),
		OverrideConfig: toOptionalMap(fs, "override", *override),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, id)

	if !*send {
		return nil
	}
	return a.manager.Upload(ctx, id, newProgressBar(a.out, id))
}

func sendCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("send")
	quiet := fs.BoolP("quiet", "q", false, "do not report progress")
	id, err := parse(fs, args, true)
	if err != nil {
		return err
	}
	var progress contract.ProgressFunc
	if !*quiet {
		progress = newProgressBar(a.out, id)
	}
	return a.manager.Upload(ctx, id, progress)
}

func importCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("import")
	keep := fs.Bool("keep", false, "keep the upload after a successful import")
	id, err := parse(fs, args, true)
	if err != nil {
		return err
	}
	return importUpload(ctx, a.manager, a.out, id, *keep)
}

// importUpload deletes the upload after a successful import unless keep is set.
// A refused delete keeps the tracker and only prints a warning, the import
// itself already happened.
func importUpload(ctx context.Context, manager services.IUploadManager, out io.Writer, id string, keep bool) error {
	report, err := manager.ImportUpload(ctx, id)
	if err != nil {
		return err
	}
	if err := renderReport(out, report); err != nil {
		return err
	}
	if keep {
		return nil
	}
	if err := manager.DeleteUpload(ctx, id, false); err != nil {
		fmt.Fprintf(out, "%s %s was imported but not deleted, run delete again later: %v\n", statusMissing.Render("warning"), id, err)
	}
	return nil
}

func deleteCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("delete")
	force := fs.Bool("force", false, "forget the upload locally even if the repository refuses")
	id, err := parse(fs, args, true)
	if err != nil {
		return err
	}
	return a.manager.DeleteUpload(ctx, id, *force)
}

func listCommand(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("list")
	pending := fs.Bool("pending", false, "only show unfinished uploads")
	if _, err := parse(fs, args, false); err != nil {
		return err
	}
	trackers := a.manager.ListUploads()
	if *pending {
		trackers = lo.Reject(trackers, func(t upload.Tracker, _ int) bool { return t.IsFinishedUploading })
	}
	renderTrackers(a.out, trackers)
	return nil
}

func resumeCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("resume")
	parallelism := fs.IntP("parallelism", "p", a.config.ResumeParallelism, "uploads transferred at the same time")
	if _, err := parse(fs, args, false); err != nil {
		return err
	}
	resumer := workers.NewUploadResumer(a.manager, *parallelism, nil, a.log)
	completed, err := resumer.Resume(ctx)
	for _, id := range completed {
		fmt.Fprintf(a.out, "%s %s\n", statusDone.Render("done"), id)
	}
	return err
}

func historyCommand(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("history")
	limit := fs.IntP("limit", "n", 20, "number of imports to show, 0 for all")
	if _, err := parse(fs, args, false); err != nil {
		return err
	}
	records, err := a.journal.Recent(*limit)
	if err != nil {
		return err
	}
	renderHistory(a.out, records)
	return nil
}

func toAnyMap(m map[string]string) map[string]any {
	if m == nil {
		return nil
	}
	return lo.MapValues(m, func(v string, _ string) any { return v })
}

// toOptionalMap keeps nil when the flag was never given, so "not set" and "set but empty" stay distinct.
func toOptionalMap(fs *pflag.FlagSet, name string, m map[string]string) map[string]any {
	if !fs.Changed(name) {
		return nil
	}
	if m == nil {
		return map[string]any{}
	}
	return toAnyMap(m)
}
