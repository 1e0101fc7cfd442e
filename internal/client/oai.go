package client

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"

	"workdigest/internal"
)

// OpenAIClient wraps the Responses API for the review agent.
type OpenAIClient struct {
	c     *openai.Client
	model openai.ChatModel
}

// NewOpenAIClient builds a client for cfg. Failed requests are not retried,
// matching the digest backends. opts are applied last.
func NewOpenAIClient(cfg internal.OpenAIConfig, opts ...option.RequestOption) *OpenAIClient {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(2 * DefaultTimeout),
	}
	client := openai.NewClient(append(base, opts...)...)
	return &OpenAIClient{
		c:     &client,
		model: cfg.Model,
	}
}

type GetResponseInput struct {
	SystemPrompt   string                                  `json:"system_prompt"`
	History        []responses.ResponseInputItemUnionParam `json:"history"`
	Tools          []openai.FunctionDefinitionParam        `json:"tools"`
	ResponseFormat responses.ResponseTextConfigParam       `json:"response_format"`
}

// GetResponseOutput holds either the model's answer or the tool calls it
// wants run before answering.
type GetResponseOutput struct {
	Answer    string                               `json:"answer"`
	ToolCalls []responses.ResponseFunctionToolCall `json:"tool_calls"`
}

func (o *OpenAIClient) GetResponse(ctx context.Context, req *GetResponseInput) (*GetResponseOutput, error) {
	params := responses.ResponseNewParams{
		Model:        o.model,
		Instructions: param.NewOpt(req.SystemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: req.History,
		},
		Tools: toToolParams(req.Tools),
		Text:  req.ResponseFormat,
	}

	res, err := o.c.Responses.New(ctx, params)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	var (
		answer    strings.Builder
		toolCalls []responses.ResponseFunctionToolCall
	)
	for _, out := range res.Output {
		switch out.Type {
		case "function_call":
			toolCalls = append(toolCalls, out.AsFunctionCall())
		case "message":
			for _, part := range out.AsMessage().Content {
				answer.WriteString(part.Text)
			}
		}
	}

	return &GetResponseOutput{
		Answer:    answer.String(),
		ToolCalls: toolCalls,
	}, nil
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return &TransportError{Op: "POST", URL: "responses", Err: err}
	}
	e := &RequestRejectedError{StatusCode: apiErr.StatusCode, Body: apiErr.Message}
	if apiErr.Request != nil && apiErr.Request.URL != nil {
		e.URL = apiErr.Request.URL.String()
	}
	return e
}

// toToolParams converts function definitions to Responses API tools.
func toToolParams(tools []openai.FunctionDefinitionParam) []responses.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	params := make([]responses.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		params = append(params, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
				Strict:      t.Strict,
			},
		})
	}
	return params
}

func UserMessage(msg string) responses.ResponseInputItemUnionParam {
	return message(responses.EasyInputMessageRoleUser, msg)
}

func AssistantMessage(msg string) responses.ResponseInputItemUnionParam {
	return message(responses.EasyInputMessageRoleAssistant, msg)
}

func message(role responses.EasyInputMessageRole, msg string) responses.ResponseInputItemUnionParam {
	return responses.ResponseInputItemUnionParam{
		OfMessage: &responses.EasyInputMessageParam{
			Role: role,
			Type: responses.EasyInputMessageTypeMessage,
			Content: responses.EasyInputMessageContentUnionParam{
				OfString: param.NewOpt(msg),
			},
		},
	}
}
