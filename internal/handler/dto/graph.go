package dto

// GenerateGraphRequest is the body of POST /api/generate-graph and
// POST /api/start-generate-graph.
type GenerateGraphRequest struct {
	Subject string `json:"subject"`
	Model   string `json:"model,omitempty"`
}

// StreamGraphRequest is the body of POST /api/stream-generate-graph.
// CaptchaToken carries the human-verification proof when the deployment has
// a verification provider configured. The hierarchy fields tie a sub-graph
// to the node it was expanded from; the server passes them through untouched.
type StreamGraphRequest struct {
	Subject      string `json:"subject"`
	Model        string `json:"model,omitempty"`
	CaptchaToken string `json:"captcha_token,omitempty"`

	ParentGraphID   string `json:"parent_graph_id,omitempty"`
	ParentNodeID    string `json:"parent_node_id,omitempty"`
	SourceNodeLabel string `json:"source_node_label,omitempty"`
	Title           string `json:"title,omitempty"`
}

// StreamUsersRequest is the body of POST /api/stream-users.
type StreamUsersRequest struct {
	Domain        string `json:"domain"`
	NumberOfUsers int    `json:"number_of_users,omitempty"`
	Model         string `json:"model,omitempty"`
}

// StartGraphResponse is the body returned by POST /api/start-generate-graph.
type StartGraphResponse struct {
	TaskID string `json:"task_id"`
}

// TaskResultResponse is the body returned by GET /api/graph/:task_id.
// Result is the generation payload once completed, "Processing..." while the
// job is pending or unknown, and "error" when the job failed.
type TaskResultResponse struct {
	Result any `json:"result"`
}

// RateLimitError is the 429 body for rejected requests. RetryAfter mirrors
// the Retry-After header, in seconds.
type RateLimitError struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// StreamStart is the payload of the first frame of every streaming session,
// wrapped as {"result": ...}. It is emitted before the generation backend is
// touched, so clients always receive session metadata even when generation
// fails immediately.
type StreamStart struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	Subject   string `json:"subject"`
	Model     string `json:"model"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`

	ParentGraphID   string `json:"parent_graph_id,omitempty"`
	ParentNodeID    string `json:"parent_node_id,omitempty"`
	SourceNodeLabel string `json:"source_node_label,omitempty"`
	Title           string `json:"title,omitempty"`
}

// StartFrame wraps StreamStart on the wire.
type StartFrame struct {
	Result StreamStart `json:"result"`
}

// TerminalFrame is the last frame of a stream: either the completion marker
// or the generic error marker. No diagnostic detail ever rides on it.
type TerminalFrame struct {
	Result string `json:"result"`
	Status string `json:"status"`
}

// Terminal frame values.
const (
	StreamStatusStreaming = "streaming"
	StreamStatusComplete  = "complete"
	StreamStatusError     = "error"

	StreamResultComplete = "graph complete"
	StreamResultError    = "error"
)
