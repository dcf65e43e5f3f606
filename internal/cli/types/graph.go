package types

// Node is a knowledge graph node as it appears on the wire.
type Node struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// Edge is a directed, labeled connection between two nodes, referencing its
// endpoints by node id.
type Edge struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Label  string `json:"label"`
	Color  string `json:"color,omitempty"`
}

// KnowledgeGraph is the complete generated graph.
type KnowledgeGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// GraphResult is the response of a one-shot generation.
type GraphResult struct {
	ID        string         `json:"id"`
	CreatedAt int64          `json:"createdAt"`
	Subject   string         `json:"subject"`
	Model     string         `json:"model"`
	Graph     KnowledgeGraph `json:"graph"`
}

// User is a synthetic user record from the users stream.
type User struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// StreamFrame is one NDJSON line of a streaming session. Exactly one of the
// field groups is populated per frame:
//   - Result as an object: the session-start metadata
//   - Type + Entity: one generated entity
//   - Result as a string + Status: the terminal marker
type StreamFrame struct {
	Result any    `json:"result,omitempty"`
	Status string `json:"status,omitempty"`

	Type   string `json:"type,omitempty"`
	Entity any    `json:"entity,omitempty"`

	// Fields of a user record frame, which arrives bare.
	Name string `json:"name,omitempty"`
	Age  int    `json:"age,omitempty"`
}

// StreamStart is the metadata of the first frame.
type StreamStart struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	Subject   string `json:"subject"`
	Model     string `json:"model"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// Terminal frame status values.
const (
	StatusStreaming = "streaming"
	StatusComplete  = "complete"
	StatusError     = "error"
)

// GenerateRequest is the body for generation endpoints.
type GenerateRequest struct {
	Subject      string `json:"subject"`
	Model        string `json:"model,omitempty"`
	CaptchaToken string `json:"captcha_token,omitempty"`
}

// UsersRequest is the body for the users stream endpoint.
type UsersRequest struct {
	Domain        string `json:"domain"`
	NumberOfUsers int    `json:"number_of_users,omitempty"`
	Model         string `json:"model,omitempty"`
}

// StartResponse is the body returned when a background generation is
// submitted.
type StartResponse struct {
	TaskID string `json:"task_id"`
}

// TaskResponse is the body returned when polling a background generation.
type TaskResponse struct {
	Result any `json:"result"`
}

// Readiness is the body of the readiness probe.
type Readiness struct {
	Status       string   `json:"status"`
	Models       []string `json:"models"`
	Verification bool     `json:"verification"`
}

// APIError is the error envelope of non-streaming endpoints.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
