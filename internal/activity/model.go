package activity

// Actions recorded in the log table. Uploads are not logged; the table only
// tracks access to and removal of existing files.
const (
	ActionDownload = "DOWNLOAD"
	ActionDelete   = "DELETE"
)

// LogEntry is one append-only row of the log table. Fields copied from the
// file metadata are a snapshot taken at event time, not a live reference.
type LogEntry struct {
	LogID            string `dynamodbav:"logId" json:"logId"`
	Action           string `dynamodbav:"action" json:"action"`
	FileKey          string `dynamodbav:"fileKey" json:"fileKey"`
	OriginalFileName string `dynamodbav:"originalFileName" json:"originalFileName"`
	UploaderEmail    string `dynamodbav:"uploaderEmail" json:"uploaderEmail"`
	UserEmail        string `dynamodbav:"userEmail" json:"userEmail"`
	UserRole         string `dynamodbav:"userRole" json:"userRole"`
	CreatedAt        string `dynamodbav:"createdAt" json:"createdAt"`
	FileSize         int64  `dynamodbav:"fileSize" json:"fileSize"`
	TargetID         string `dynamodbav:"targetId" json:"targetId"`
	TargetType       string `dynamodbav:"targetType" json:"targetType"`
	IPAddress        string `dynamodbav:"ipAddress" json:"ipAddress"`
	UserAgent        string `dynamodbav:"userAgent" json:"userAgent"`
	CountryCode      string `dynamodbav:"countryCode,omitempty" json:"countryCode,omitempty"`
}
