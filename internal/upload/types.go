// Package upload holds the request and response contract shared by the upload
// server and its clients.
package upload

// Multipart field names of POST /api/upload.
const (
	FieldFile    = "file"
	FieldWeights = "weights"
	FieldImpacts = "impacts"
	FieldEmail   = "email"
)

const (
	UploadPath   = "/api/upload"
	DownloadPath = "/api/download/"
	ExamplePath  = "/api/example"
)

// Response is the JSON body returned by POST /api/upload.
type Response struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	TotalRows   int      `json:"total_rows,omitempty"`
	ResultFile  string   `json:"result_file,omitempty"`
	EmailStatus string   `json:"email_status,omitempty"`
	DataPreview []Record `json:"data_preview,omitempty"`
}

// Example is the sample input served by GET /api/example.
type Example struct {
	Weights    string `json:"weights"`
	Impacts    string `json:"impacts"`
	SampleData string `json:"sample_data"`
}

// DownloadURL is the link a client renders for a result file. The name is used
// verbatim.
func DownloadURL(resultFile string) string {
	return DownloadPath + resultFile
}
