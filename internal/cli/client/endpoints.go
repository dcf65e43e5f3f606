package client

const (
	endpointGenerate      = "/api/generate-graph"
	endpointStreamGraph   = "/api/stream-generate-graph"
	endpointStreamUsers   = "/api/stream-users"
	endpointStartGenerate = "/api/start-generate-graph"
	endpointTaskResult    = "/api/graph/%s" // GET - poll by task id
	endpointReadiness     = "/health/ready"
)
