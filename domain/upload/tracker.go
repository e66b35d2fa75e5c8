package upload

// Tracker is the durable protocol state of one upload.
// Offset only grows and never exceeds the size of SourceFilename.
// IsRunning is owned by whichever operation is currently transferring or
// deleting the upload in this process.
type Tracker struct {
	UploadID            string
	Location            string
	SourceFilename      string
	RepoID              string
	UnitTypeID          string
	UnitKey             map[string]any
	UnitMetadata        map[string]any
	OverrideConfig      map[string]any
	Offset              int64
	IsFinishedUploading bool
	IsRunning           bool
}

// Clone returns a deep copy, nested maps and slices included.
func (t Tracker) Clone() Tracker {
	c := t
	c.UnitKey = cloneMap(t.UnitKey)
	c.UnitMetadata = cloneMap(t.UnitMetadata)
	c.OverrideConfig = cloneMap(t.OverrideConfig)
	return c
}

// Remaining is the number of bytes still to be sent for a file of the given size.
func (t Tracker) Remaining(size int64) int64 {
	if t.Offset >= size {
		return 0
	}
	return size - t.Offset
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}
		return s
	case []byte:
		return append([]byte(nil), val...)
	default:
		return val
	}
}
