package shared

// Build-time upload limits. The embedded example config carries the same values; a config file may override them.
const (
	// MaxFileSize is the largest accepted file, 3 GiB.
	MaxFileSize int64 = 3 * 1024 * 1024 * 1024
	// MaxFilesToUpload caps the number of files staged in one session.
	MaxFilesToUpload = 4
	// ServerURL is the default API base URL.
	ServerURL = "http://localhost:8001/api"
	// UploadPath is the endpoint relative to [ServerURL] that receives uploads.
	UploadPath = "/files"
)

// AllowedFileTypes lists the MIME types accepted for upload.
//
// MOV containers are reported as video/quicktime by browsers and by content sniffing, so it is
// accepted alongside the legacy video/mov label.
var AllowedFileTypes = []string{"video/mp4", "video/mov", "video/quicktime"}
