package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/packtrace/packtrace/internal/search"
)

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema defines the JSON schema for tool input.
type InputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

var tools = []Tool{
	{
		Name: "packtrace_search",
		Description: "Search manufactured units by serial prefix or inclusive serial range, type, and production date. " +
			"Each unit comes back with its box, pallet, packing list, shipment, and status. Results are paginated.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]any{
				"searchScope": map[string]any{
					"type":        "string",
					"enum":        []string{"auto", "serial", "module_serial", "box", "pallet"},
					"description": "Field the serial is matched against (default auto: detected from the value)",
				},
				"startSerial": prop("string", "Serial prefix, or the start of a range when endSerial is set"),
				"endSerial":   prop("string", "Inclusive end of a serial range"),
				"type":        prop("string", "Product type filter (e.g. M1); 'all' disables it"),
				"startDate":   prop("string", "Lower timestamp bound, YYYY-MM-DD or RFC 3339"),
				"endDate":     prop("string", "Upper timestamp bound, YYYY-MM-DD (whole day) or RFC 3339"),
				"page":        prop("integer", "1-based page number (default 1)"),
				"limit":       prop("integer", "Page size (default 100)"),
			},
		},
	},
	{
		Name:        "packtrace_detect_type",
		Description: "Report which hierarchy levels (serial, module_serial, box, pallet) have a value starting with the given prefix.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: map[string]any{"serial": prop("string", "Serial prefix to classify")},
			Required:   []string{"serial"},
		},
	},
	{
		Name:        "packtrace_children",
		Description: "List the units packed in a box, or the boxes stacked on a pallet.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]any{
				"kind": map[string]any{
					"type":        "string",
					"enum":        []string{"box", "pallet"},
					"description": "Container kind",
				},
				"id": prop("string", "Numeric container id"),
			},
			Required: []string{"kind", "id"},
		},
	},
}

type searchArgs struct {
	search.Params
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type searchResult struct {
	*search.ListResult
	Warnings []search.Warning `json:"warnings,omitempty"`
}

type detectArgs struct {
	Serial string `json:"serial"`
}

type childrenArgs struct {
	Kind string `json:"kind"`
	// ID accepts either a JSON string or number.
	ID json.Number `json:"id"`
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &search.ValidationError{Code: search.CodeInvalidInput, Message: "invalid arguments: " + err.Error()}
	}
	return nil
}

func (s *Server) callTool(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	switch name {
	case "packtrace_search":
		var args searchArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		req, err := args.Request()
		if err != nil {
			return nil, err
		}
		res, err := s.engine.List(ctx, req, args.Page, args.Limit)
		if err != nil {
			return nil, err
		}
		return searchResult{ListResult: res, Warnings: res.Warnings}, nil

	case "packtrace_detect_type":
		var args detectArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		levels, err := s.engine.Detect(ctx, args.Serial)
		if err != nil {
			return nil, err
		}
		return map[string]any{"types": levels}, nil

	case "packtrace_children":
		var args childrenArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		id, err := search.ParseID(args.ID.String())
		if err != nil {
			return nil, err
		}
		switch args.Kind {
		case "box":
			units, err := s.engine.BoxUnits(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]any{"items": units}, nil
		case "pallet":
			boxes, err := s.engine.PalletBoxes(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]any{"items": boxes}, nil
		}
		return nil, &search.ValidationError{
			Code:    search.CodeInvalidInput,
			Message: fmt.Sprintf("unknown kind %q (expected box or pallet)", args.Kind),
		}
	}

	s.log.Warn("unknown tool", zap.String("tool", name))
	return nil, &search.ValidationError{Code: search.CodeInvalidInput, Message: fmt.Sprintf("unknown tool: %s", name)}
}

// errorResult reports a failed tool call. Store failures are not detailed
// to the client.
func errorResult(err error) ToolResult {
	body := struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{Code: search.CodeInternal, Message: "internal error"}

	if ve, ok := search.IsValidation(err); ok {
		body.Code, body.Message = ve.Code, ve.Message
	} else if errors.Is(err, search.ErrStore) {
		body.Code, body.Message = search.CodeStore, "hierarchy store unavailable"
	}

	data, _ := json.Marshal(body)
	return ToolResult{Content: []ToolContent{{Type: "text", Text: string(data)}}, IsError: true}
}
