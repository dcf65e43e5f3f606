// Package openai implements the structured-generation backend on top of the
// OpenAI chat-completion API. One-shot generation uses JSON-object mode;
// streaming generation asks the model for one JSON record per line and
// re-frames the token stream into typed entities as each line completes.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/johnwlockwood/knowledge-graph/internal/config"
	"github.com/johnwlockwood/knowledge-graph/internal/domain"
	"github.com/johnwlockwood/knowledge-graph/internal/domain/entity"
)

const graphPromptFormat = "Help me understand following by describing as a detailed knowledge graph: %s"

const graphStreamInstructions = `Respond with newline-delimited JSON only, one object per line, no surrounding text.
Each line must be {"type":"node","entity":{"id":<int>,"label":<string>,"color":<string>}} or {"type":"edge","entity":{"source":<int>,"target":<int>,"label":<string>,"color":<string>}}.
Emit every node before any edge that references it.`

const usersStreamInstructions = `Respond with newline-delimited JSON only, one object per line, no surrounding text.
Each line must be {"name":<string>,"age":<int>}.`

// Client drives the OpenAI API as a typed entity generator.
type Client struct {
	api    *openai.Client
	models config.ModelsConfig
	logger *slog.Logger
}

var _ domain.GraphGenerator = (*Client)(nil)

// NewClient creates a generation client. BaseURL overrides the API endpoint
// for proxies and compatible backends.
func NewClient(cfg config.OpenAIConfig, models config.ModelsConfig, logger *slog.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(apiCfg),
		models: models,
		logger: logger,
	}
}

// ResolveModel maps a requested model onto the deployment's whitelist,
// falling back to the default model for unknown or empty names.
func (c *Client) ResolveModel(requested string) string {
	resolved := c.models.ResolveModel(requested)
	if resolved != requested {
		c.logger.Info("model resolved", "requested", requested, "used", resolved)
	}
	return resolved
}

// Generate produces a complete knowledge graph in one call using JSON mode.
func (c *Client) Generate(ctx context.Context, subject, model string) (*entity.GraphResult, error) {
	resolved := c.ResolveModel(model)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: resolved,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(graphPromptFormat, subject) +
					`
Respond with a single JSON object of the form {"nodes":[{"id","label","color"}],"edges":[{"source","target","label","color"}]}.`,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, domain.NewGenerationError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.NewGenerationError(errors.New("empty completion"))
	}

	var graph entity.KnowledgeGraph
	if err := sonic.Unmarshal([]byte(resp.Choices[0].Message.Content), &graph); err != nil {
		return nil, domain.NewGenerationError(fmt.Errorf("unparseable graph payload: %w", err))
	}
	for i := range graph.Edges {
		if graph.Edges[i].Color == "" {
			graph.Edges[i].Color = "black"
		}
	}

	return &entity.GraphResult{
		Graph:     &graph,
		Model:     resolved,
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UnixMilli(),
		Subject:   subject,
	}, nil
}

// GenerateStream produces graph entities incrementally. The call returns
// immediately; the backend is only contacted from the producer goroutine, so
// failures to even open the stream arrive on the channel. Records the model
// emits that cannot be classified come through with a nil Entity so the
// consumer can apply its own skip policy.
func (c *Client) GenerateStream(ctx context.Context, subject, model string) (<-chan entity.EntityChunk, error) {
	resolved := c.ResolveModel(model)

	prompt := fmt.Sprintf(graphPromptFormat, subject) + "\n" + graphStreamInstructions
	return c.openStream(ctx, resolved, prompt, parseGraphEntityLine)
}

// GenerateUsersStream produces synthetic user records incrementally.
func (c *Client) GenerateUsersStream(ctx context.Context, domainName string, numberOfUsers int, model string) (<-chan entity.EntityChunk, error) {
	resolved := c.ResolveModel(model)

	prompt := fmt.Sprintf("Create %d users from %s", numberOfUsers, domainName) + "\n" + usersStreamInstructions
	return c.openStream(ctx, resolved, prompt, parseUserLine)
}

// tokenStream is the slice of the completion stream drainStream consumes.
type tokenStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

func (c *Client) openStream(ctx context.Context, model, prompt string, parse parseFunc) (<-chan entity.EntityChunk, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stream: true,
	}

	// The upstream call happens inside the producer so callers can publish
	// session metadata before any backend work; an open failure reaches the
	// consumer in-band like any other generation failure. The channel is
	// unbuffered so the producer advances one record per consumer write.
	out := make(chan entity.EntityChunk)
	go func() {
		defer close(out)
		stream, err := c.api.CreateChatCompletionStream(ctx, req)
		if err != nil {
			c.logger.Warn("failed to open generation stream", "error", err)
			select {
			case out <- entity.EntityChunk{Err: domain.NewGenerationError(err)}:
			case <-ctx.Done():
			}
			return
		}
		c.drainStream(ctx, stream, out, parse)
	}()
	return out, nil
}

// drainStream re-frames the token stream into entity chunks: deltas are
// buffered until a newline completes a record, each record is parsed, and a
// terminal chunk (IsEnd or Err) is emitted before the channel closes.
// Sends race against ctx so a cancelled consumer never strands this
// goroutine. The caller owns closing out.
func (c *Client) drainStream(ctx context.Context, stream tokenStream, out chan<- entity.EntityChunk, parse parseFunc) {
	defer stream.Close()

	emit := func(chunk entity.EntityChunk) bool {
		select {
		case out <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var buf bytes.Buffer
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			if !c.emitLine(buf.Bytes(), parse, emit) {
				return
			}
			emit(entity.EntityChunk{IsEnd: true})
			return
		}
		if err != nil {
			c.logger.Warn("generation stream failed", "error", err)
			emit(entity.EntityChunk{Err: domain.NewGenerationError(err)})
			return
		}
		if len(resp.Choices) == 0 {
			continue
		}

		buf.WriteString(resp.Choices[0].Delta.Content)
		for {
			line, rest, found := bytes.Cut(buf.Bytes(), []byte{'\n'})
			if !found {
				break
			}
			lineCopy := append([]byte(nil), line...)
			restCopy := append([]byte(nil), rest...)
			buf.Reset()
			buf.Write(restCopy)

			if !c.emitLine(lineCopy, parse, emit) {
				return
			}
		}
	}
}

// emitLine parses one record and pushes the outcome. Unclassifiable records
// are forwarded as nil-entity chunks; blank lines and formatting noise are
// dropped outright. Returns false when the consumer is gone.
func (c *Client) emitLine(line []byte, parse parseFunc, emit func(entity.EntityChunk) bool) bool {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || bytes.HasPrefix(line, []byte("```")) {
		return true
	}

	payload, err := parse(line)
	if err != nil {
		c.logger.Debug("skipping unclassifiable record", "error", err)
		return emit(entity.EntityChunk{Entity: nil})
	}
	return emit(entity.EntityChunk{Entity: payload})
}
