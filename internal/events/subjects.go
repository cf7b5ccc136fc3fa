package events

const (
	SubjectAnalysisFailed = "topsis.analysis.failed"

	StreamName   = "TOPSIS_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

var StreamSubjects = []string{"topsis.analysis.>", "topsis.email.>"}

func SubjectAnalysisCompleted(runID string) string { return "topsis.analysis." + runID + ".completed" }
func SubjectEmailSent(runID string) string         { return "topsis.email." + runID + ".sent" }
func SubjectEmailFailed(runID string) string       { return "topsis.email." + runID + ".failed" }
