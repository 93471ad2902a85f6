package syncrpc

type PingRequest struct{}

type PingResponse struct {
	ServerTime string `json:"server_time"`
}

// SelectRequest asks for the caller's rows of one table, optionally only
// those with updated_at after Since (an ISO-8601 timestamp).
type SelectRequest struct {
	Table  string `json:"table"`
	UserID string `json:"user_id"`
	Since  string `json:"since,omitempty"`
}

type SelectResponse struct {
	Rows []map[string]any `json:"rows"`
}

// UpsertRequest carries one full row keyed by remote column names.
type UpsertRequest struct {
	Table string         `json:"table"`
	Row   map[string]any `json:"row"`
}

type UpsertResponse struct{}

// DeleteRequest removes a row by id. Row must hold id, user_id, deleted_at
// and updated_at.
type DeleteRequest struct {
	Table string         `json:"table"`
	Row   map[string]any `json:"row"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}
