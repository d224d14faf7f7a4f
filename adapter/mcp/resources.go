package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose habit data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	tools := habitTools{app: deps.App}

	srv.Resource("cadence://habits").
		Name("Habits").
		Description("Every tracked habit").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			habits, err := tools.list(ctx, habitListInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, habits)
		})

	srv.Resource("cadence://habits/broken").
		Name("Broken habits").
		Description("Habits that are overdue for their periodicity right now").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			broken, err := tools.broken(ctx, habitBrokenInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, broken)
		})

	srv.Resource("cadence://streaks").
		Name("Longest streaks").
		Description("The habit or habits holding the longest streak").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			entries, err := tools.streaks(ctx, habitStreaksInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, entries)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
