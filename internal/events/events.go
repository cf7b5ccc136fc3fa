package events

import "time"

type AnalysisCompletedEvent struct {
	RunID      string    `json:"run_id"`
	InputFile  string    `json:"input_file"`
	ResultFile string    `json:"result_file"`
	TotalRows  int       `json:"total_rows"`
	Criteria   int       `json:"criteria"`
	Timestamp  time.Time `json:"timestamp"`
}

type AnalysisFailedEvent struct {
	InputFile string    `json:"input_file,omitempty"`
	Stage     string    `json:"stage"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

type EmailEvent struct {
	RunID      string `json:"run_id"`
	Recipient  string `json:"recipient"`
	ResultFile string `json:"result_file"`
	Error      string `json:"error,omitempty"`
}
