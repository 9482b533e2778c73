package domain

// SuccessResponse is a minimal acknowledgement payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

// PipelineMetrics is the snapshot returned by GET /v1/metrics/pipeline.
type PipelineMetrics struct {
	RowsIngested     int64   `json:"rows_ingested"`
	RowsRejected     int64   `json:"rows_rejected"`
	TotalRequests    int64   `json:"total_requests"`
	ErrorRate        float64 `json:"error_rate"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	Period           string  `json:"period"`
}

// InsightCompletion is the response of the external text-generation
// collaborator, with token usage for metrics.
type InsightCompletion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}
