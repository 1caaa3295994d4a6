package core

import "context"

// Context keys for survey options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	surveyIDKey       contextKey = "surveyID"
)

// withSuppressHeader sets whether headers should be suppressed in the context
func withSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	suppress, ok := ctx.Value(suppressHeaderKey).(bool)
	return ok && suppress
}

// withSurveyID stores the tracking ID of the running survey.
func withSurveyID(ctx context.Context, surveyID int64) context.Context {
	return context.WithValue(ctx, surveyIDKey, surveyID)
}

// getSurveyID returns the tracking ID, if tracking is active.
func getSurveyID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(surveyIDKey).(int64)
	return id, ok && id > 0
}

// QuietContext returns a context for callers that own stdout, such as the MCP
// server, so surveys skip the progress header.
func QuietContext(ctx context.Context) context.Context {
	return withSuppressHeader(ctx)
}
