package openai

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/johnwlockwood/knowledge-graph/internal/domain/entity"
)

// Parse failures come in two flavors: a kind outside the closed set, and a
// known kind whose payload does not match its schema. Both are skipped
// during streaming, but they are distinct conditions.
var (
	errUnknownKind = errors.New("unrecognized entity kind")
	errMalformed   = errors.New("malformed entity payload")
)

// parseFunc turns one streamed record line into an entity payload.
type parseFunc func(line []byte) (any, error)

type entityEnvelope struct {
	Type   string          `json:"type"`
	Entity json.RawMessage `json:"entity"`
}

// parseGraphEntityLine decodes one {"type","entity"} record into a
// *entity.GraphEntity carrying a typed node or edge.
func parseGraphEntityLine(line []byte) (any, error) {
	var env entityEnvelope
	if err := sonic.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}

	switch env.Type {
	case entity.KindNode:
		var n entity.Node
		if err := sonic.Unmarshal(env.Entity, &n); err != nil {
			return nil, fmt.Errorf("%w: node: %v", errMalformed, err)
		}
		if n.Label == "" {
			return nil, fmt.Errorf("%w: node without label", errMalformed)
		}
		return &entity.GraphEntity{Type: entity.KindNode, Entity: &n}, nil

	case entity.KindEdge:
		var e entity.Edge
		if err := sonic.Unmarshal(env.Entity, &e); err != nil {
			return nil, fmt.Errorf("%w: edge: %v", errMalformed, err)
		}
		if e.Color == "" {
			e.Color = "black"
		}
		return &entity.GraphEntity{Type: entity.KindEdge, Entity: &e}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnknownKind, env.Type)
	}
}

// parseUserLine decodes one flat {"name","age"} record.
func parseUserLine(line []byte) (any, error) {
	var u entity.UserRecord
	if err := sonic.Unmarshal(line, &u); err != nil {
		return nil, fmt.Errorf("%w: user: %v", errMalformed, err)
	}
	if u.Name == "" {
		return nil, fmt.Errorf("%w: user without name", errMalformed)
	}
	return &u, nil
}
