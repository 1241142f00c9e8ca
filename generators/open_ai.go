package generators

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"

	"github.com/reusee/metaloop/cmds"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/nets"
	"github.com/reusee/metaloop/vars"
)

var debugOpenAI = cmds.Switch("-debug-openai", "log raw generation traffic")

type OpenAI struct {
	args   GeneratorArgs
	apiKey string
	client nets.HTTPClient
	logger logs.Logger
	retry  RetryPolicy
}

var _ Generator = new(OpenAI)

type NewOpenAI func(args GeneratorArgs, apiKey string) *OpenAI

func (Module) NewOpenAI(
	client nets.HTTPClient,
	logger logs.Logger,
	retry RetryPolicy,
) NewOpenAI {
	return func(args GeneratorArgs, apiKey string) *OpenAI {
		return &OpenAI{
			args:   args,
			apiKey: apiKey,
			client: client,
			logger: logger,
			retry:  retry,
		}
	}
}

func (o *OpenAI) Args() GeneratorArgs {
	return o.args
}

// Generate retries transient failures with exponential backoff and returns
// a *TransportError once it gives up.
func (o *OpenAI) Generate(ctx context.Context, messages []Message) (string, error) {
	return doWithRetry(ctx, o.logger, o.retry, o.args.Model, func() (string, error) {
		return o.generate(ctx, messages)
	})
}

func (o *OpenAI) generate(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.args.Timeout())
	defer cancel()

	req := ChatCompletionRequest{
		Model:               o.args.Model,
		Stream:              true,
		MaxCompletionTokens: vars.DerefOrZero(o.args.MaxGenerateTokens),
		Temperature:         o.args.Temperature,
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	if o.args.IsOpenRouter {
		req.Reasoning = &Reasoning{
			Exclude: true,
		}
	}

	bodyBytes, err := o.encodeRequest(req)
	if err != nil {
		return "", err
	}
	if *debugOpenAI {
		o.logger.InfoContext(ctx, "open ai request", "body", string(bodyBytes))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", strings.TrimSuffix(o.args.BaseURL, "/")+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	o.logger.InfoContext(ctx, "generating",
		"model", o.args.Model,
	)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", OpenAIError{
			Err:     err,
			Request: req,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp, req)
	}

	var text string
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		text, err = o.readJSON(resp.Body)
	} else {
		text, err = o.readStream(ctx, resp.Body)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.Join(fmt.Errorf("no output"), ErrRetryable)
	}
	return text, nil
}

func (o *OpenAI) encodeRequest(req ChatCompletionRequest) ([]byte, error) {
	if len(o.args.ExtraArguments) == 0 {
		return json.Marshal(req)
	}
	bs, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(bs, &m); err != nil {
		return nil, err
	}
	maps.Copy(m, o.args.ExtraArguments)
	return json.Marshal(m)
}

func statusError(resp *http.Response, req ChatCompletionRequest) error {
	body, _ := io.ReadAll(resp.Body)
	retryable := resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode >= 500

	var err error
	var errResp ErrorResponse
	if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error != nil {
		errResp.Error.HTTPStatusCode = resp.StatusCode
		err = errResp.Error
	} else {
		err = fmt.Errorf("bad status: %d, body: %s", resp.StatusCode, string(body))
	}

	if retryable {
		return errors.Join(err, ErrRetryable)
	}
	return OpenAIError{
		StatusCode: resp.StatusCode,
		Err:        err,
		Request:    req,
	}
}

func (o *OpenAI) readJSON(r io.Reader) (string, error) {
	var resp ChatCompletionResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return "", fmt.Errorf("error decoding response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Join(fmt.Errorf("no choices"), ErrRetryable)
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) readStream(ctx context.Context, r io.Reader) (string, error) {
	var buf strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "data: [DONE]") {
			break
		}

		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := line[6:]

		var streamResp ChatCompletionStreamResponse
		if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
			return "", fmt.Errorf("error unmarshalling stream response: %w", err)
		}

		if *debugOpenAI {
			o.logger.InfoContext(ctx, "open ai response",
				"details", streamResp,
			)
		}

		if len(streamResp.Choices) == 0 {
			continue
		}

		buf.WriteString(streamResp.Choices[0].Delta.Content)

		if reason := streamResp.Choices[0].FinishReason; reason == "error" {
			return "", errors.Join(errors.New(reason), ErrRetryable)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Join(fmt.Errorf("error reading stream: %w", err), ErrRetryable)
	}

	return buf.String(), nil
}
