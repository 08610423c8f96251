// ABOUTME: MCP tool implementations for the calorie balance engine.
// ABOUTME: Exposes event logging, balances, timelines, goals, and patterns.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/calbal/internal/metabolic"
	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/timeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// log_event
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_event",
		Description: "Log a calorie event (consumed, burned_exercise, burned_bmr, weight_measurement)",
	}, s.handleLogEvent)

	// get_daily_balance
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_daily_balance",
		Description: "Get the computed calorie balance for a day",
	}, s.handleGetDailyBalance)

	// get_timeline
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_timeline",
		Description: "Get bucketed event totals over a time range (hour/day/week/month)",
	}, s.handleGetTimeline)

	// set_goal
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_goal",
		Description: "Set the active calorie goal, replacing any current one",
	}, s.handleSetGoal)

	// get_goal_progress
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_goal_progress",
		Description: "Get progress against the active goal",
	}, s.handleGetGoalProgress)

	// detect_patterns
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "detect_patterns",
		Description: "Detect behavioral patterns (meal timing, weekday/weekend split, exercise frequency)",
	}, s.handleDetectPatterns)

	// calculate_profile
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "calculate_profile",
		Description: "Calculate and store a metabolic profile (BMR/TDEE) from biometrics",
	}, s.handleCalculateProfile)
}

// Tool input/output types

type logEventInput struct {
	EventType string  `json:"event_type" jsonschema:"Type of event (consumed, burned_exercise, burned_bmr, weight_measurement)"`
	Amount    float64 `json:"amount" jsonschema:"Calories, or kilograms for weight_measurement"`
	Timestamp string  `json:"timestamp,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
	Source    string  `json:"source,omitempty" jsonschema:"Data source (manual, fitness_tracker, smart_scale, nutrition_scan, healthkit, google_fit)"`
	User      string  `json:"user,omitempty" jsonschema:"User ID, defaults to the configured user"`
}

type eventOutput struct {
	ID        string  `json:"id"`
	EventType string  `json:"event_type"`
	Amount    float64 `json:"amount"`
	Unit      string  `json:"unit"`
	Message   string  `json:"message"`
}

type dailyBalanceInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day (YYYY-MM-DD), defaults to today UTC"`
	User string `json:"user,omitempty" jsonschema:"User ID, defaults to the configured user"`
}

type timelineInput struct {
	Start       string `json:"start" jsonschema:"Range start (ISO 8601 or YYYY-MM-DD)"`
	End         string `json:"end" jsonschema:"Range end (exclusive)"`
	Granularity string `json:"granularity,omitempty" jsonschema:"Bucket width (hour, day, week, month); default day"`
	User        string `json:"user,omitempty" jsonschema:"User ID, defaults to the configured user"`
}

type setGoalInput struct {
	GoalType       string  `json:"goal_type" jsonschema:"Goal type (weight_loss, weight_gain, maintenance)"`
	DailyTarget    float64 `json:"daily_calorie_target" jsonschema:"Daily calorie target"`
	WeeklyChangeKg float64 `json:"weekly_change_kg,omitempty" jsonschema:"Weekly weight change in kg; negative for loss"`
	StartWeightKg  float64 `json:"start_weight_kg,omitempty" jsonschema:"Starting weight; defaults to latest measurement"`
	TargetWeightKg float64 `json:"target_weight_kg,omitempty" jsonschema:"Target weight in kg; required for weight goals"`
	User           string  `json:"user,omitempty" jsonschema:"User ID, defaults to the configured user"`
}

type goalOutput struct {
	ID      string `json:"id"`
	Type    string `json:"goal_type"`
	EndDate string `json:"projected_end_date,omitempty"`
	Message string `json:"message"`
}

type userInput struct {
	User string `json:"user,omitempty" jsonschema:"User ID, defaults to the configured user"`
}

type detectPatternsInput struct {
	WindowDays int    `json:"window_days,omitempty" jsonschema:"Trailing window in days (default 7)"`
	User       string `json:"user,omitempty" jsonschema:"User ID, defaults to the configured user"`
}

type calculateProfileInput struct {
	WeightKg      float64 `json:"weight_kg" jsonschema:"Body weight in kg"`
	HeightCm      float64 `json:"height_cm" jsonschema:"Height in cm"`
	Age           int     `json:"age" jsonschema:"Age in years"`
	Gender        string  `json:"gender" jsonschema:"Gender for the BMR formula (male or female)"`
	ActivityLevel string  `json:"activity_level,omitempty" jsonschema:"Activity level (sedentary, light, moderate, active, extra_active); default sedentary"`
	User          string  `json:"user,omitempty" jsonschema:"User ID, defaults to the configured user"`
}

type profileOutput struct {
	ID            string  `json:"id"`
	BMRCalories   float64 `json:"bmr_calories"`
	TDEECalories  float64 `json:"tdee_calories"`
	AccuracyScore float64 `json:"accuracy_score"`
	Message       string  `json:"message"`
}

// Tool handlers

func (s *Server) handleLogEvent(ctx context.Context, req *mcp.CallToolRequest, input logEventInput) (*mcp.CallToolResult, eventOutput, error) {
	if !models.IsValidEventType(input.EventType) {
		return nil, eventOutput{}, fmt.Errorf("unknown event type: %s", input.EventType)
	}

	ev := models.NewCalorieEvent(s.user(input.User), models.EventType(input.EventType), input.Amount)

	if input.Timestamp != "" {
		t, err := parseTimestamp(input.Timestamp)
		if err != nil {
			return nil, eventOutput{}, fmt.Errorf("bad timestamp: %w", err)
		}
		ev.WithTimestamp(t)
	}
	if input.Source != "" {
		if !models.IsValidEventSource(input.Source) {
			return nil, eventOutput{}, fmt.Errorf("unknown source: %s", input.Source)
		}
		ev.WithSource(models.EventSource(input.Source))
	}

	if err := s.engine.LogEvent(ev); err != nil {
		return nil, eventOutput{}, fmt.Errorf("failed to log event: %w", err)
	}

	unit := models.EventUnits[ev.EventType]
	return nil, eventOutput{
		ID:        ev.ID.String()[:8],
		EventType: input.EventType,
		Amount:    ev.Amount,
		Unit:      unit,
		Message:   fmt.Sprintf("Logged %s: %.1f %s (ID: %s)", input.EventType, ev.Amount, unit, ev.ID.String()[:8]),
	}, nil
}

func (s *Server) handleGetDailyBalance(ctx context.Context, req *mcp.CallToolRequest, input dailyBalanceInput) (*mcp.CallToolResult, any, error) {
	day := time.Now().UTC()
	if input.Date != "" {
		t, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("bad date (want YYYY-MM-DD): %w", err)
		}
		day = t
	}

	bal, err := s.engine.GetDailyBalance(s.user(input.User), day)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute balance: %w", err)
	}
	return nil, bal, nil
}

func (s *Server) handleGetTimeline(ctx context.Context, req *mcp.CallToolRequest, input timelineInput) (*mcp.CallToolResult, any, error) {
	start, err := parseTimestamp(input.Start)
	if err != nil {
		return nil, nil, fmt.Errorf("bad start: %w", err)
	}
	end, err := parseTimestamp(input.End)
	if err != nil {
		return nil, nil, fmt.Errorf("bad end: %w", err)
	}

	g := timeline.Day
	if input.Granularity != "" {
		if !timeline.IsValidGranularity(input.Granularity) {
			return nil, nil, fmt.Errorf("unknown granularity: %s", input.Granularity)
		}
		g = timeline.Granularity(input.Granularity)
	}

	buckets, err := s.engine.GetTimeline(s.user(input.User), start, end, g)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build timeline: %w", err)
	}
	return nil, buckets, nil
}

func (s *Server) handleSetGoal(ctx context.Context, req *mcp.CallToolRequest, input setGoalInput) (*mcp.CallToolResult, goalOutput, error) {
	if !models.IsValidGoalType(input.GoalType) {
		return nil, goalOutput{}, fmt.Errorf("unknown goal type: %s", input.GoalType)
	}

	g := models.NewCalorieGoal(s.user(input.User), models.GoalType(input.GoalType), input.DailyTarget).
		WithWeeklyChange(input.WeeklyChangeKg).
		WithWeights(input.StartWeightKg, input.TargetWeightKg)

	if err := s.engine.SetGoal(g); err != nil {
		return nil, goalOutput{}, fmt.Errorf("failed to set goal: %w", err)
	}

	out := goalOutput{
		ID:      g.ID.String()[:8],
		Type:    input.GoalType,
		Message: fmt.Sprintf("Activated %s goal at %.0f kcal/day (ID: %s)", input.GoalType, input.DailyTarget, g.ID.String()[:8]),
	}
	if g.EndDate != nil {
		out.EndDate = g.EndDate.Format("2006-01-02")
	}
	return nil, out, nil
}

func (s *Server) handleGetGoalProgress(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, any, error) {
	p, err := s.engine.GetGoalProgress(s.user(input.User))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get goal progress: %w", err)
	}
	return nil, p, nil
}

func (s *Server) handleDetectPatterns(ctx context.Context, req *mcp.CallToolRequest, input detectPatternsInput) (*mcp.CallToolResult, any, error) {
	days := input.WindowDays
	if days <= 0 {
		days = 7
	}

	report, err := s.engine.DetectPatterns(s.user(input.User), days)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to detect patterns: %w", err)
	}
	return nil, report, nil
}

func (s *Server) handleCalculateProfile(ctx context.Context, req *mcp.CallToolRequest, input calculateProfileInput) (*mcp.CallToolResult, profileOutput, error) {
	level := models.ActivitySedentary
	if input.ActivityLevel != "" {
		if !models.IsValidActivityLevel(input.ActivityLevel) {
			return nil, profileOutput{}, fmt.Errorf("unknown activity level: %s", input.ActivityLevel)
		}
		level = models.ActivityLevel(input.ActivityLevel)
	}

	p, err := s.engine.CalculateMetabolicProfile(s.user(input.User), metabolic.Biometrics{
		WeightKg:      input.WeightKg,
		HeightCm:      input.HeightCm,
		Age:           input.Age,
		Gender:        metabolic.Gender(input.Gender),
		ActivityLevel: level,
	})
	if err != nil {
		return nil, profileOutput{}, fmt.Errorf("failed to calculate profile: %w", err)
	}

	return nil, profileOutput{
		ID:            p.ID.String()[:8],
		BMRCalories:   p.BMRCalories,
		TDEECalories:  p.TDEECalories,
		AccuracyScore: p.AccuracyScore,
		Message:       fmt.Sprintf("Profile saved: BMR %.0f kcal, TDEE %.0f kcal (ID: %s)", p.BMRCalories, p.TDEECalories, p.ID.String()[:8]),
	}, nil
}

// parseTimestamp accepts RFC 3339 or bare dates.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02 15:04", s)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %s", s)
}
