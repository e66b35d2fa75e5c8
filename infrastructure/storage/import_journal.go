package storage

import (
	"content-repo/contract"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const importPrefix = "import:"

// ImportJournal keeps the history of successful imports in BadgerDB.
type ImportJournal struct {
	db  *badger.DB
	log *slog.Logger
}

func NewImportJournal(db *badger.DB, log *slog.Logger) *ImportJournal {
	return &ImportJournal{db: db, log: log}
}

// Record persists an import with the key "import:{timestamp_padded}:{upload_id}".
// The 19-digit zero padding keeps lexicographical order chronological.
func (j *ImportJournal) Record(record contract.ImportRecord) error {
	if record.ImportedAt.IsZero() {
		record.ImportedAt = time.Now().UTC()
	}
	key := fmt.Sprintf("%s%019d:%s", importPrefix, record.ImportedAt.UnixNano(), record.UploadID)

	value, err := toPbImportRecord(record)
	if err != nil {
		return fmt.Errorf("failed to encode import of %s: %w", record.UploadID, err)
	}
	data, err := proto.Marshal(value)
	if err != nil {
		return err
	}

	if err := j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	}); err != nil {
		return err
	}
	j.log.Debug("Import recorded", "upload_id", record.UploadID, "key", key)
	return nil
}

// Recent returns up to limit imports, newest first. A limit <= 0 returns everything.
func (j *ImportJournal) Recent(limit int) ([]contract.ImportRecord, error) {
	var records []contract.ImportRecord
	prefix := []byte(importPrefix)

	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the last key <= seek, so seek past every timestamp
		seek := append([]byte(importPrefix), '~')
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) == limit {
				break
			}
			err := it.Item().Value(func(v []byte) error {
				var s structpb.Struct
				if err := proto.Unmarshal(v, &s); err != nil {
					return fmt.Errorf("failed to unmarshal import record: %w", err)
				}
				record, err := fromPbImportRecord(&s)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during import history fetch: %w", err)
	}
	return records, nil
}

func toPbImportRecord(record contract.ImportRecord) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"upload_id":     record.UploadID,
		"repo_id":       record.RepoID,
		"unit_type_id":  record.UnitTypeID,
		"unit_key":      lo.Ternary[any](record.UnitKey == nil, nil, record.UnitKey),
		"spawned_tasks": lo.ToAnySlice(record.SpawnedTasks),
		"imported_at":   record.ImportedAt.UTC().Format(time.RFC3339Nano),
	})
}

func fromPbImportRecord(s *structpb.Struct) (contract.ImportRecord, error) {
	fields := s.GetFields()
	importedAt, err := time.Parse(time.RFC3339Nano, fields["imported_at"].GetStringValue())
	if err != nil {
		return contract.ImportRecord{}, fmt.Errorf("invalid import timestamp: %w", err)
	}

	var unitKey map[string]any
	if k := fields["unit_key"].GetStructValue(); k != nil {
		unitKey = k.AsMap()
	}

	return contract.ImportRecord{
		UploadID:   fields["upload_id"].GetStringValue(),
		RepoID:     fields["repo_id"].GetStringValue(),
		UnitTypeID: fields["unit_type_id"].GetStringValue(),
		UnitKey:    unitKey,
		SpawnedTasks: lo.Map(fields["spawned_tasks"].GetListValue().GetValues(), func(v *structpb.Value, _ int) string {
			return v.GetStringValue()
		}),
		ImportedAt: importedAt,
	}, nil
}
