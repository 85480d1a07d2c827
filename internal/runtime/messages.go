package runtime

import (
	"fmt"
	"strings"

	"github.com/okra-platform/utilfn/internal/functions"
	"google.golang.org/protobuf/types/known/structpb"
)

// Invocation messages sent to function actors are google.protobuf.Struct
// values shaped as:
//
//	{"id": "<uuid>", "params": {"operation": "random", "min": "1"}}
//
// Replies are shaped as:
//
//	{"id": "<uuid>", "status": 200, "body": {"random": 7}}

// NewInvocation builds an invocation message. Invalid UTF-8 in parameters is
// replaced with U+FFFD.
func NewInvocation(id string, params functions.Params) (*structpb.Struct, error) {
	fields := make(map[string]any, len(params))
	for name, value := range params {
		fields[strings.ToValidUTF8(name, "\uFFFD")] = strings.ToValidUTF8(value, "\uFFFD")
	}

	msg, err := structpb.NewStruct(map[string]any{
		"id":     id,
		"params": fields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build invocation: %w", err)
	}
	return msg, nil
}

// DecodeInvocation extracts the invocation ID and parameters
func DecodeInvocation(msg *structpb.Struct) (string, functions.Params, error) {
	fields := msg.GetFields()
	idValue, ok := fields["id"]
	if !ok {
		return "", nil, fmt.Errorf("%w: invocation missing id", ErrInvalidMessage)
	}

	paramsValue, ok := fields["params"]
	if !ok || paramsValue.GetStructValue() == nil {
		return "", nil, fmt.Errorf("%w: invocation missing params", ErrInvalidMessage)
	}

	params := make(functions.Params)
	for name, value := range paramsValue.GetStructValue().GetFields() {
		params[name] = value.GetStringValue()
	}

	return idValue.GetStringValue(), params, nil
}

// NewReply builds the reply message for an invocation result
func NewReply(id string, result functions.Result) (*structpb.Struct, error) {
	body := make(map[string]any, len(result.Body))
	for k, v := range result.Body {
		body[k] = v
	}

	msg, err := structpb.NewStruct(map[string]any{
		"id":     id,
		"status": result.Status,
		"body":   body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build reply: %w", err)
	}
	return msg, nil
}

// DecodeReply extracts the invocation ID and result from a reply message
func DecodeReply(msg *structpb.Struct) (string, functions.Result, error) {
	fields := msg.GetFields()

	statusValue, ok := fields["status"]
	if !ok {
		return "", functions.Result{}, fmt.Errorf("%w: reply missing status", ErrInvalidMessage)
	}
	status := int(statusValue.GetNumberValue())
	if status < 100 || status > 599 {
		return "", functions.Result{}, fmt.Errorf("%w: reply status %d", ErrInvalidMessage, status)
	}

	bodyValue, ok := fields["body"]
	if !ok || bodyValue.GetStructValue() == nil {
		return "", functions.Result{}, fmt.Errorf("%w: reply missing body", ErrInvalidMessage)
	}

	return fields["id"].GetStringValue(), functions.Result{
		Status: status,
		Body:   bodyValue.GetStructValue().AsMap(),
	}, nil
}

// replyError builds a reply for a failure inside the actor. Both strings are
// valid UTF-8, so building the Struct cannot fail.
func replyError(id string, status int, message string) *structpb.Struct {
	reply, _ := NewReply(id, functions.NewErrorResult(status, message))
	return reply
}
