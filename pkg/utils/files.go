package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// FormatSize returns a human readable file size string.
func FormatSize(numBytes int64) string {
	switch {
	case numBytes < 1024:
		return fmt.Sprintf("%d B", numBytes)
	case numBytes < 1<<20:
		return fmt.Sprintf("%.1f KB", float64(numBytes)/float64(1<<10))
	case numBytes < 1<<30:
		return fmt.Sprintf("%.1f MB", float64(numBytes)/float64(1<<20))
	default:
		return fmt.Sprintf("%.1f GB", float64(numBytes)/float64(1<<30))
	}
}

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

const maxFileNameLen = 200

// SafeFileName strips illegal characters and enforces a maximum length.
func SafeFileName(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		name = "file"
	}
	if len(name) > maxFileNameLen {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		if cut := maxFileNameLen - len(ext); cut < len(stem) {
			stem = stem[:cut]
		}
		name = stem + ext
	}
	return name
}

// OutputFileName builds a processed-file name from the original:
// OutputFileName("my video.mp4", "subtitled") -> "my video_subtitled.mp4".
func OutputFileName(original, suffix string) string {
	safe := SafeFileName(original)
	stem := strings.TrimSuffix(safe, filepath.Ext(safe))
	if stem == "" {
		stem = "video"
	}
	return fmt.Sprintf("%s_%s.mp4", stem, suffix)
}

// Ext returns the lower-cased extension of a file name, dot included.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
