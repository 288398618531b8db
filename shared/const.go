package shared

const (
	UserID = "user_id"

	VariantPairMatch      = "pair_match"
	VariantSequence       = "sequence"
	VariantCategoryNaming = "category_naming"

	GameModeRelaxed   = "relaxed"
	GameModeTimed     = "timed"
	GameModeChallenge = "challenge"
	GameModeUntimed   = "untimed"

	SubmissionNotStarted = "not_submitted"
	SubmissionInFlight   = "submitting"
	SubmissionSucceeded  = "succeeded"
	SubmissionFailed     = "failed"
)
