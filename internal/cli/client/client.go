package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/johnwlockwood/knowledge-graph/internal/cli/types"
)

// APIClient wraps a Hertz client for HTTP communication with the API server.
type APIClient struct {
	client *client.Client
	server string
}

// NewAPIClient creates an API client for the given server address.
func NewAPIClient(server string) (*APIClient, error) {
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// The standard library dialer is required for streaming responses;
	// netpoll does not support them.
	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithResponseBodyStream(true),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client: c,
		server: normalizedServer,
	}, nil
}

// normalizeServerURL ensures the server address has a scheme and no path.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}

	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// Generate runs a one-shot graph generation and waits for the full result.
func (c *APIClient) Generate(ctx context.Context, genReq *types.GenerateRequest) (*types.GraphResult, error) {
	bodyBytes, err := sonic.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointGenerate)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(bodyBytes)

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result types.GraphResult
	if err := sonic.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// StreamGraph opens a streaming generation and returns a channel of frames.
// The error channel receives at most one error; both channels close when the
// stream ends.
func (c *APIClient) StreamGraph(ctx context.Context, genReq *types.GenerateRequest) (<-chan types.StreamFrame, <-chan error, error) {
	return c.openStream(ctx, endpointStreamGraph, genReq)
}

// StreamUsers opens a streaming synthetic-user generation.
func (c *APIClient) StreamUsers(ctx context.Context, usersReq *types.UsersRequest) (<-chan types.StreamFrame, <-chan error, error) {
	return c.openStream(ctx, endpointStreamUsers, usersReq)
}

func (c *APIClient) openStream(ctx context.Context, endpoint string, body any) (<-chan types.StreamFrame, <-chan error, error) {
	bodyBytes, err := sonic.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpoint)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Accept", "application/x-ndjson")
	req.SetBody(bodyBytes)

	if err := c.client.Do(ctx, req, resp); err != nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		err := statusError(resp)
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, err
	}

	frameCh := make(chan types.StreamFrame, 10)
	errCh := make(chan error, 1)

	go func() {
		defer func() {
			close(frameCh)
			close(errCh)
			protocol.ReleaseRequest(req)
			protocol.ReleaseResponse(resp)
		}()

		bodyStream := resp.BodyStream()
		if bodyStream == nil {
			errCh <- fmt.Errorf("body stream is nil")
			return
		}

		c.readFrames(ctx, bodyStream, frameCh, errCh)
	}()

	return frameCh, errCh, nil
}

// readFrames reads NDJSON frames line by line as they arrive.
func (c *APIClient) readFrames(ctx context.Context, reader io.Reader, frameCh chan<- types.StreamFrame, errCh chan<- error) {
	scanner := bufio.NewScanner(reader)

	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var frame types.StreamFrame
		if err := sonic.Unmarshal([]byte(line), &frame); err != nil {
			errCh <- fmt.Errorf("failed to parse frame: %w", err)
			return
		}

		select {
		case frameCh <- frame:
		case <-ctx.Done():
			return
		}

		// The terminal frame is the last thing the server sends.
		if frame.Status == types.StatusComplete || frame.Status == types.StatusError {
			return
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		errCh <- fmt.Errorf("stream read failed: %w", err)
	}
}

// StartGenerate submits a background generation and returns its task id.
func (c *APIClient) StartGenerate(ctx context.Context, genReq *types.GenerateRequest) (string, error) {
	bodyBytes, err := sonic.Marshal(genReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointStartGenerate)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(bodyBytes)

	if err := c.client.Do(ctx, req, resp); err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var startResp types.StartResponse
	if err := sonic.Unmarshal(resp.Body(), &startResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return startResp.TaskID, nil
}

// TaskResult polls a background generation by task id.
func (c *APIClient) TaskResult(ctx context.Context, taskID string) (*types.TaskResponse, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(c.server + fmt.Sprintf(endpointTaskResult, taskID))

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var taskResp types.TaskResponse
	if err := sonic.Unmarshal(resp.Body(), &taskResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &taskResp, nil
}

// Readiness fetches the server's readiness report.
func (c *APIClient) Readiness(ctx context.Context) (*types.Readiness, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(c.server + endpointReadiness)

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var ready types.Readiness
	if err := sonic.Unmarshal(resp.Body(), &ready); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &ready, nil
}

func checkStatus(resp *protocol.Response) error {
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return statusError(resp)
	}
	return nil
}

// statusError turns an error response into a readable message, using the
// server's error envelope when it parses.
func statusError(resp *protocol.Response) error {
	code := resp.StatusCode()
	if code == 429 {
		retryAfter := string(resp.Header.Peek("Retry-After"))
		if retryAfter != "" {
			return fmt.Errorf("rate limited, retry after %s seconds", retryAfter)
		}
		return fmt.Errorf("rate limited, slow down")
	}

	var apiErr types.APIError
	if err := sonic.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("server rejected request (HTTP %d): %s", code, apiErr.Message)
	}
	return fmt.Errorf("request failed with HTTP status %d", code)
}
