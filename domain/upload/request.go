package upload

// Session is what the repository service hands back when an upload is opened.
type Session struct {
	UploadID string
	Location string
}

// InitializeRequest describes the local file and the unit it will become once imported.
type InitializeRequest struct {
	SourceFilename string         `validate:"required,max=4096"`
	RepoID         string         `validate:"required,max=256"`
	UnitTypeID     string         `validate:"required,max=256"`
	UnitKey        map[string]any `validate:"required"`
	UnitMetadata   map[string]any
	OverrideConfig map[string]any
}

// ImportRequest is sent to the repository service to turn a finished upload into a unit.
type ImportRequest struct {
	UploadID       string
	RepoID         string
	UnitTypeID     string
	UnitKey        map[string]any
	UnitMetadata   map[string]any
	OverrideConfig map[string]any
}

// ImportReport is the service's answer to an import, passed through untouched.
type ImportReport struct {
	SpawnedTasks []string
	Result       map[string]any
}

func NewImportRequest(t Tracker) ImportRequest {
	c := t.Clone()
	return ImportRequest{
		UploadID:       c.UploadID,
		RepoID:         c.RepoID,
		UnitTypeID:     c.UnitTypeID,
		UnitKey:        c.UnitKey,
		UnitMetadata:   c.UnitMetadata,
		OverrideConfig: c.OverrideConfig,
	}
}
