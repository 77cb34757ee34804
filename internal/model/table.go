package model

// Table is a named, server-owned collection of ingested documents.
type Table struct {
	TableID   string `json:"table_id"`
	TableName string `json:"table_name"`
	IsPublic  bool   `json:"is_public"`
}

// CreateTableInput is the body of the backend's create_table call.
// SkipTableCreation attaches Documents to an existing table of the same name
// instead of creating a new one.
type CreateTableInput struct {
	TableName         string        `json:"table_name"`
	IsPublic          bool          `json:"is_public"`
	SkipTableCreation bool          `json:"skip_table_creation"`
	Documents         []DocumentRef `json:"documents,omitempty"`
}

// CreateTableResult is the backend's acknowledgement of create_table.
type CreateTableResult struct {
	TableID string `json:"table_id"`
}
