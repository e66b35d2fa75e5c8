package main

import (
	"content-repo/contract"
	"content-repo/domain/upload"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	statusDone    = color.New(color.FgGreen, color.OpBold)
	statusRunning = color.New(color.FgCyan)
	statusPending = color.New(color.FgYellow)
	statusMissing = color.New(color.FgRed)
)

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderTrackers(out io.Writer, trackers []upload.Tracker) {
	table := newTable(out, []string{"Upload ID", "Status", "Progress", "Type", "Repository", "Unit type", "Source"})
	for _, t := range trackers {
		size, mime := describeSource(t.SourceFilename)
		table.Append([]string{
			t.UploadID,
			trackerStatus(t, size),
			fmt.Sprintf("%s / %s", humanize.Bytes(uint64(t.Offset)), humanizeSize(size)),
			mime,
			t.RepoID,
			t.UnitTypeID,
			t.SourceFilename,
		})
	}
	table.Render()
}

func renderHistory(out io.Writer, records []contract.ImportRecord) {
	table := newTable(out, []string{"Imported", "Upload ID", "Repository", "Unit type", "Unit key", "Tasks"})
	for _, r := range records {
		table.Append([]string{
			humanize.Time(r.ImportedAt),
			r.UploadID,
			r.RepoID,
			r.UnitTypeID,
			formatUnitKey(r.UnitKey),
			strings.Join(r.SpawnedTasks, ","),
		})
	}
	table.Render()
}

func renderReport(out io.Writer, report upload.ImportReport) error {
	s, err := structpb.NewStruct(map[string]any{
		"spawned_tasks": lo.ToAnySlice(report.SpawnedTasks),
		"result":        report.Result,
	})
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true, UseProtoNames: true}.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// newProgressBar prints one line per acknowledged segment, at most twice a second.
func newProgressBar(out io.Writer, uploadID string) contract.ProgressFunc {
	var last time.Time
	return func(sent, total int64) {
		if sent < total && time.Since(last) < 500*time.Millisecond {
			return
		}
		last = time.Now()
		percent := 100.0
		if total > 0 {
			percent = float64(sent) * 100 / float64(total)
		}
		fmt.Fprintf(out, "%s %s / %s (%.1f%%)\n", uploadID,
			humanize.Bytes(uint64(sent)), humanize.Bytes(uint64(total)), percent)
	}
}

func trackerStatus(t upload.Tracker, size int64) string {
	switch {
	case t.IsRunning:
		return statusRunning.Render("running")
	case t.IsFinishedUploading:
		return statusDone.Render("finished")
	case size < 0:
		return statusMissing.Render("missing source")
	default:
		return statusPending.Render("pending")
	}
}

// describeSource returns -1 as size when the source file cannot be read.
func describeSource(path string) (int64, string) {
	info, err := os.Stat(path)
	if err != nil {
		return -1, "-"
	}
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return info.Size(), "-"
	}
	return info.Size(), mime.String()
}

func humanizeSize(size int64) string {
	if size < 0 {
		return "?"
	}
	return humanize.Bytes(uint64(size))
}

func formatUnitKey(key map[string]any) string {
	s, err := structpb.NewStruct(key)
	if err != nil {
		return fmt.Sprint(key)
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Sprint(key)
	}
	return string(data)
}
