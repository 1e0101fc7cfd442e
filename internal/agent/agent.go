package agent

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/tidwall/gjson"

	"workdigest/internal"
	"workdigest/internal/client"
	"workdigest/internal/logger"
	"workdigest/internal/prompt"
)

const toolGetDigest = "get_digest"

// Responder is the LLM backend the agent talks to.
type Responder interface {
	GetResponse(ctx context.Context, req *client.GetResponseInput) (*client.GetResponseOutput, error)
}

// DigestFunc produces the digest for a source; "" means nothing was completed.
type DigestFunc func(ctx context.Context, source internal.SourceType) (string, error)

type Agent struct {
	client       Responder
	userPipe     <-chan string
	out          io.Writer
	history      []responses.ResponseInputItemUnionParam
	systemPrompt string
	digest       DigestFunc
	digests      map[internal.SourceType]string
}

func New(c Responder, pipe <-chan string, out io.Writer, digest DigestFunc) *Agent {
	return &Agent{
		client:       c,
		userPipe:     pipe,
		out:          out,
		history:      []responses.ResponseInputItemUnionParam{},
		systemPrompt: prompt.ReviewPrompt,
		digest:       digest,
		digests:      make(map[internal.SourceType]string),
	}
}

// Run answers every question received on the pipe until it is closed.
func (a *Agent) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-a.userPipe:
			if !ok {
				return nil
			}
			if strings.TrimSpace(msg) == "" {
				continue
			}
			a.history = append(a.history, client.UserMessage(msg))
			if err := a.turn(ctx); err != nil {
				return err
			}
		}
	}
}

func (a *Agent) turn(ctx context.Context) error {
	for {
		req := client.GetResponseInput{
			SystemPrompt: a.systemPrompt,
			History:      a.history,
			Tools:        a.tools(),
		}
		res, err := a.client.GetResponse(ctx, &req)
		if err != nil {
			return err
		}

		// No tool calls requested means agent is done with its turn
		if len(res.ToolCalls) == 0 {
			a.history = append(a.history, client.AssistantMessage(res.Answer))
			fmt.Fprintln(a.out, res.Answer)
			return nil
		}

		if err := a.handleToolCalls(ctx, res.ToolCalls); err != nil {
			return err
		}
	}
}

func (a *Agent) tools() []openai.FunctionDefinitionParam {
	return []openai.FunctionDefinitionParam{
		{
			Name:        toolGetDigest,
			Description: param.NewOpt("Return the plain-text digest of work completed this year in one source."),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"source": map[string]any{
						"type": "string",
						"enum": []string{string(internal.SourceTypeGitHub), string(internal.SourceTypeJira)},
					},
				},
				"required":             []string{"source"},
				"additionalProperties": false,
			},
			Strict: param.NewOpt(true),
		},
	}
}

func (a *Agent) handleToolCalls(ctx context.Context, calls []responses.ResponseFunctionToolCall) error {
	for _, call := range calls {
		a.history = append(a.history, responses.ResponseInputItemParamOfFunctionCall(call.Arguments, call.CallID, call.Name))

		switch call.Name {
		case toolGetDigest:
			source := internal.SourceType(gjson.Get(call.Arguments, "source").String())
			out, err := a.loadDigest(ctx, source)
			if err != nil {
				return err
			}
			a.history = append(a.history, responses.ResponseInputItemParamOfFunctionCallOutput(call.CallID, out))
		default:
			a.history = append(a.history, responses.ResponseInputItemParamOfFunctionCallOutput(call.CallID, "unknown tool"))
		}
	}
	return nil
}

func (a *Agent) loadDigest(ctx context.Context, source internal.SourceType) (string, error) {
	if source != internal.SourceTypeGitHub && source != internal.SourceTypeJira {
		return fmt.Sprintf("unknown source %q", source), nil
	}
	if out, ok := a.digests[source]; ok {
		return out, nil
	}

	logger.Debug("Agent requested digest", "source", source)
	out, err := a.digest(ctx, source)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = "No completed work found for this source."
	}
	a.digests[source] = out
	return out, nil
}
