package constvars

const (
	GetScreenerSuccessMessage    = "screener retrieved successfully"
	CreateSessionSuccessMessage  = "screening session started"
	GetSessionSuccessMessage     = "screening session retrieved successfully"
	AnswerQuestionSuccessMessage = "answer recorded"
	ResetSessionSuccessMessage   = "screening session reset"
	SubmitSessionSuccessMessage  = "screening submitted"
	HealthCheckSuccessMessage    = "service is healthy"
)
