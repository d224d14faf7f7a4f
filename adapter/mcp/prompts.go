package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common habit workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("habit_review").
		Description("Review habit consistency: longest streaks, overdue habits and what to do next.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Habit Review", habitReviewText(args["habit"])), nil
		})

	srv.Prompt("habit_setup").
		Description("Help decide which habits to track and whether each is daily or weekly.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Habit Setup", `Help me set up habits worth tracking.

1. Look at what I already track using the cadence://habits resource
2. Ask me about the routines I want to build
3. For each one, suggest a short name, a one-line description and whether
   it should be daily or weekly

Add the habits I agree to with the habit.add tool.`), nil
		})

	return nil
}

func habitReviewText(habit string) string {
	if habit != "" {
		return fmt.Sprintf(`Review my habit %q.

1. Use habit.get with name %q to see its completions and longest streak
2. Use habit.broken to check whether it is overdue

Tell me how consistent I have been and one concrete step to keep the streak going.`, habit, habit)
	}
	return `Review my habits.

1. Read the cadence://streaks resource to see which habit holds the longest streak
2. Read the cadence://habits/broken resource to see which habits are overdue
3. Read the cadence://habits resource for the full list

Summarise what is going well, which habits need attention, and suggest
whether any habit should be dropped or changed from daily to weekly.`
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
