// ABOUTME: MCP resource implementations for the calorie balance engine.
// ABOUTME: Provides calbal://today, calbal://recent, and calbal://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/calbal/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// calbal://today - Today's computed balance
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "calbal://today",
		Name:        "Today's Calorie Balance",
		Description: "Computed calorie balance for today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// calbal://recent - Events from the last 7 days
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "calbal://recent",
		Name:        "Recent Calorie Events",
		Description: "Raw calorie events from the last 7 days",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// calbal://summary - Dashboard: balance, goal progress, latest weight
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "calbal://summary",
		Name:        "Calorie Balance Dashboard",
		Description: "Today's balance, active goal progress, and latest weight",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	bal, err := s.engine.GetDailyBalance(s.defaultUser, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}
	return jsonResource("calbal://today", bal)
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := time.Now().UTC()
	events, err := s.repo.ListEvents(s.defaultUser, now.AddDate(0, 0, -7), now.Add(time.Minute))
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	result := map[string]interface{}{
		"events": events,
		"count":  len(events),
	}
	return jsonResource("calbal://recent", result)
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := time.Now().UTC()

	bal, err := s.engine.GetDailyBalance(s.defaultUser, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}

	result := map[string]interface{}{
		"generated_at": now.Format(time.RFC3339),
		"balance":      bal,
	}

	progress, err := s.engine.GetGoalProgress(s.defaultUser)
	switch {
	case err == nil:
		result["goal"] = progress
	case errors.Is(err, engine.ErrNotConfigured):
		result["goal"] = map[string]string{"message": "No active goal."}
	default:
		return nil, fmt.Errorf("failed to get goal progress: %w", err)
	}

	weight, err := s.repo.LatestWeight(s.defaultUser)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest weight: %w", err)
	}
	if weight != nil {
		result["latest_weight"] = map[string]interface{}{
			"kg":          weight.Amount,
			"measured_at": weight.Timestamp.Format(time.RFC3339),
		}
	}

	return jsonResource("calbal://summary", result)
}

// jsonResource marshals v as an indented JSON resource payload.
func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
