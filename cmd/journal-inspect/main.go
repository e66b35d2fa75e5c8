package main

import (
	"content-repo/infrastructure/storage"
	"content-repo/internal"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

// journal-inspect dumps the import journal without taking its lock, so it can
// run next to a content-upload process.
func main() {
	config, err := internal.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	dbPath := pflag.String("db", config.JournalDir(), "Path to the import journal")
	limit := pflag.IntP("limit", "n", 0, "Number of imports to show, 0 for all")
	pflag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	journal := storage.NewImportJournal(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	records, err := journal.Recent(*limit)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Timestamp", "Upload ID", "Repository", "Unit type", "Unit key", "Tasks"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, r := range records {
		names := lo.Keys(r.UnitKey)
		sort.Strings(names)
		key := lo.Map(names, func(k string, _ int) string { return fmt.Sprintf("%s=%v", k, r.UnitKey[k]) })
		table.Append([]string{
			r.ImportedAt.Format("2006-01-02 15:04:05"),
			r.UploadID,
			r.RepoID,
			r.UnitTypeID,
			strings.Join(key, " "),
			strings.Join(r.SpawnedTasks, ","),
		})
	}
	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
