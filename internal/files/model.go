package files

// FileMetadata is one row of the metadata table, keyed by FileKey. The key is
// constructed as files/<epoch-ms>-<original-name> at upload time and doubles
// as the S3 object key.
type FileMetadata struct {
	FileKey          string `dynamodbav:"fileKey" json:"fileKey"`
	TargetID         string `dynamodbav:"targetId" json:"targetId"`
	TargetType       string `dynamodbav:"targetType" json:"targetType"`
	UserEmail        string `dynamodbav:"userEmail" json:"userEmail"`
	UserNickname     string `dynamodbav:"userNickname" json:"userNickname"`
	FileSize         int64  `dynamodbav:"fileSize" json:"fileSize"`
	Extension        string `dynamodbav:"extension" json:"extension"`
	ContentType      string `dynamodbav:"contentType" json:"contentType"`
	OriginalFileName string `dynamodbav:"originalFileName" json:"originalFileName"`
	CreatedAt        string `dynamodbav:"createdAt" json:"createdAt"`
	DownloadCount    int64  `dynamodbav:"downloadCount" json:"downloadCount"`
}

// UploadRequest carries the metadata the client announces before pushing the
// object to S3 itself.
type UploadRequest struct {
	OriginalFileName string `json:"originalFileName" validate:"required"`
	TargetID         string `json:"targetId" validate:"required"`
	TargetType       string `json:"targetType" validate:"required,targettype"`
	UserEmail        string `json:"userEmail" validate:"required,email"`
	UserNickname     string `json:"userNickname"`
	FileSize         int64  `json:"fileSize" validate:"gte=0"`
	ContentType      string `json:"contentType"`
	CreatedAt        string `json:"createdAt"`
}

// UploadResponse hands the client the signed PUT URL and the key the row was
// stored under.
type UploadResponse struct {
	PresignedURL string `json:"presignedUrl"`
	FileKey      string `json:"fileKey"`
}

// StoreMetadataRequest carries a caller-assembled metadata row under its file
// key. Unknown body fields are ignored.
type StoreMetadataRequest struct {
	FileKey  string       `json:"fileKey"`
	Metadata FileMetadata `json:"metadata"`
}

// TargetQuery selects a page of metadata for one target.
type TargetQuery struct {
	TargetID         string
	TargetType       string
	Limit            int32
	LastEvaluatedKey string
}

// Page is one page of a target listing. LastEvaluatedKey is opaque to the
// caller and empty on the final page.
type Page struct {
	Items            []*FileMetadata `json:"items"`
	LastEvaluatedKey string          `json:"lastEvaluatedKey,omitempty"`
}

// UsageStats summarizes one user's stored files.
type UsageStats struct {
	TotalFiles    int    `json:"totalFiles"`
	TotalSize     int64  `json:"totalSize"`
	TotalSizeText string `json:"totalSizeHuman"`
}
