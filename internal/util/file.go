package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// SniffMimeType 读取前 512 字节检测 MIME 类型，返回的 reader 仍包含完整内容
func SniffMimeType(r io.Reader) (string, io.Reader, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(r, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head := buffer[:n]
	return http.DetectContentType(head), io.MultiReader(strings.NewReader(string(head)), r), nil
}

// IsMedia 检测是否为音视频
func IsMedia(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeVideo) || strings.HasPrefix(mimeType, MimeAudio)
}

// MediaMimeType 优先使用客户端声明的类型，其次扩展名，最后嗅探结果
func MediaMimeType(declared, filename, sniffed string) string {
	if IsMedia(declared) {
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".mp3":
		return MimeMP3
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	}
	if sniffed != "" {
		return sniffed
	}
	return MimeOctetStream
}

func AllowedMediaExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range AllowedMediaExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
