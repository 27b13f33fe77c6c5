package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/hashmun/hashmun/backend/internal/config"
	"github.com/hashmun/hashmun/backend/internal/idgen"
	"github.com/hashmun/hashmun/backend/internal/model/roster"
)

var (
	// ErrNotConfigured is returned before any network I/O when the hosted
	// model credentials are missing.
	ErrNotConfigured = errors.New("AI credentials are not configured")

	// ErrMalformedResponse is returned when the model reply violates the
	// requested schema.
	ErrMalformedResponse = errors.New("malformed AI response")
)

// Result types of the tagged union the model must answer with.
const (
	TypeChat = "chat"
	TypeData = "data"
)

// Result is the validated outcome of one gateway call.
type Result struct {
	Type    string
	Message string
	Data    *roster.Snapshot
}

// Gateway performs the single request/response call to the hosted model.
// It is single-shot: no retry, no streaming.
type Gateway struct {
	chain compose.Runnable[map[string]any, *schema.Message]
	ids   idgen.Allocator
}

// NewGateway compiles the prompt chain against the configured model.
func NewGateway(ctx context.Context, cfg config.AIConfig, ids idgen.Allocator) (*Gateway, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Gateway{chain: runnable, ids: ids}, nil
}

// Process sends the user text plus the current roster snapshot (if any) to
// the model and validates the JSON reply against the tagged union. Every
// generated delegate that lacks an identifier is assigned one.
func (g *Gateway) Process(ctx context.Context, userText string, current *roster.Snapshot) (Result, error) {
	input := map[string]any{
		"system": buildSystemPrompt(current),
		"query":  userText,
	}

	response, err := g.chain.Invoke(ctx, input)
	if err != nil {
		return Result{}, fmt.Errorf("model request failed: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return Result{}, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	result, err := parseResponse(response.Content)
	if err != nil {
		return Result{}, err
	}

	assignDelegateIDs(result.Data, g.ids)
	log.Printf("[ai] processed input, type=%s, delegates=%d", result.Type, delegateCount(result.Data))
	return result, nil
}

// wire types mirror the schema declared to the model; validation happens
// after decode so every deviation maps to ErrMalformedResponse.
type wireResponse struct {
	Type    string        `json:"type"`
	Message string        `json:"message"`
	Data    *wireSnapshot `json:"data"`
}

type wireSnapshot struct {
	ConferenceName string         `json:"conferenceName"`
	Delegates      []wireDelegate `json:"delegates"`
}

type wireDelegate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Allotment string `json:"allotment"`
	Committee string `json:"committee"`
	Class     string `json:"class"`
	Status    string `json:"status"`
	Team      string `json:"team"`
}

func parseResponse(raw string) (Result, error) {
	cleaned := stripCodeFences(raw)

	var wire wireResponse
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch wire.Type {
	case TypeChat:
		return Result{Type: TypeChat, Message: wire.Message}, nil

	case TypeData:
		if wire.Data == nil {
			return Result{}, fmt.Errorf("%w: type is data but no data present", ErrMalformedResponse)
		}
		snap := &roster.Snapshot{ConferenceName: wire.Data.ConferenceName}
		for i, d := range wire.Data.Delegates {
			status, err := roster.ParseStatus(d.Status)
			if err != nil {
				return Result{}, fmt.Errorf("%w: delegate %d: %v", ErrMalformedResponse, i, err)
			}
			if d.Name == "" || d.Allotment == "" || d.Committee == "" || d.Team == "" {
				return Result{}, fmt.Errorf("%w: delegate %d is missing required fields", ErrMalformedResponse, i)
			}
			snap.Delegates = append(snap.Delegates, roster.Delegate{
				ID:        d.ID,
				Name:      d.Name,
				Allotment: d.Allotment,
				Committee: d.Committee,
				Class:     d.Class,
				Status:    status,
				Team:      d.Team,
			})
		}
		return Result{Type: TypeData, Message: wire.Message, Data: snap}, nil

	default:
		return Result{}, fmt.Errorf("%w: unknown type %q", ErrMalformedResponse, wire.Type)
	}
}

// stripCodeFences removes a surrounding markdown fence; hosted models wrap
// JSON replies in one despite instructions.
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func assignDelegateIDs(snap *roster.Snapshot, ids idgen.Allocator) {
	if snap == nil {
		return
	}
	for i := range snap.Delegates {
		if snap.Delegates[i].ID == "" {
			snap.Delegates[i].ID = ids.NewDelegateID()
		}
	}
}

func delegateCount(snap *roster.Snapshot) int {
	if snap == nil {
		return 0
	}
	return len(snap.Delegates)
}
