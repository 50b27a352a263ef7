package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 上传媒体相关常量
const (
	MimeVideo       = "video/"
	MimeAudio       = "audio/"
	MimeOctetStream = "application/octet-stream"
	MimeMP3         = "audio/mpeg"
)

// MaxAssignmentChars 作业文本长度上限（按字符计）
const MaxAssignmentChars = 15000

const AssignmentDisclaimer = "\n\n---\n**Note:** This feedback focuses on correctness and clarity. For plagiarism detection against external sources, please use a dedicated plagiarism checking tool."

var AllowedMediaExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".mp3", ".wav", ".m4a", ".ogg", ".flac"}
