package entity

// Node is a single concept in a knowledge graph.
type Node struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Edge is a directed relation between two nodes, referenced by node ID.
type Edge struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

// Entity kind discriminators. The set is closed: anything else coming out of
// the generation backend is treated as unrecognized.
const (
	KindNode = "node"
	KindEdge = "edge"
)

// GraphEntity is one streamable unit of a knowledge graph: a node or an edge,
// tagged with its kind. Entity holds *Node or *Edge according to Type.
type GraphEntity struct {
	Type   string `json:"type"`
	Entity any    `json:"entity"`
}

// KnowledgeGraph is a fully materialized graph, returned by one-shot
// generation.
type KnowledgeGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// GraphResult is the envelope for a completed one-shot generation.
// CreatedAt is in Unix milliseconds.
type GraphResult struct {
	Graph     *KnowledgeGraph `json:"graph"`
	Model     string          `json:"model"`
	ID        string          `json:"id"`
	CreatedAt int64           `json:"createdAt"`
	Subject   string          `json:"subject"`
}

// UserRecord is one synthetic user produced in list mode.
type UserRecord struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// EntityChunk is one pull from a streaming generation: a payload in Entity,
// normal end of the sequence (IsEnd), or a stream-level failure (Err). A
// chunk with none of the three set marks a record the backend produced but
// could not classify; consumers skip it. After IsEnd or Err the producer
// closes the channel and sends nothing further.
type EntityChunk struct {
	// Entity is the streamed payload, *GraphEntity or *UserRecord.
	// Consumers marshal it as-is and do not look inside.
	Entity any
	IsEnd  bool
	Err    error
}
