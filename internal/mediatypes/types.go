package mediatypes

import (
	"mime"
	"net/http"
	"strings"
)

// FileType represents the kind of a media buffer.
type FileType string

const (
	// FileTypeImage represents a still image.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents an unknown or unsupported type.
	FileTypeOther FileType = "other"
)

// OctetStream is returned when a type cannot be determined.
const OctetStream = "application/octet-stream"

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
	".avif": true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".3gp":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".wmv":  true,
	".flv":  true,
	".mpeg": true,
	".mpg":  true,
	".ts":   true,
	".ogv":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".avif": "image/avif",

	// Videos
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".3gp":  "video/3gpp",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".ts":   "video/mp2t",
	".ogv":  "video/ogg",
}

// preferredExtensions resolves MIME types that several extensions share.
var preferredExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/tiff": ".tiff",
	"video/mpeg": ".mpeg",
}

// isoBMFFTypes are the MIME types stored in ISO base media (ftyp/moov) containers.
var isoBMFFTypes = map[string]bool{
	"video/mp4":       true,
	"video/x-m4v":     true,
	"video/quicktime": true,
	"video/3gpp":      true,
	"video/3gpp2":     true,
	"application/mp4": true,
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns FileTypeOther if the extension is not recognized.
func GetFileType(ext string) FileType {
	if ImageExtensions[ext] {
		return FileTypeImage
	}
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns OctetStream if the extension is not recognized.
func GetMimeType(ext string) string {
	if m, ok := MimeTypes[ext]; ok {
		return m
	}
	return OctetStream
}

// IsMediaFile returns true if the extension represents a supported media file.
func IsMediaFile(ext string) bool {
	return GetFileType(ext) != FileTypeOther
}

// NormalizeMime lowercases a MIME type and strips its parameters.
// "Image/JPEG; charset=binary" becomes "image/jpeg".
func NormalizeMime(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// KindForMime classifies a MIME type by its top-level type.
func KindForMime(mimeType string) FileType {
	mt := NormalizeMime(mimeType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return FileTypeImage
	case strings.HasPrefix(mt, "video/"), mt == "application/mp4":
		return FileTypeVideo
	default:
		return FileTypeOther
	}
}

// ExtensionForMime returns a file extension for a MIME type, or "" if the
// type is unknown.
func ExtensionForMime(mimeType string) string {
	mt := NormalizeMime(mimeType)
	if ext, ok := preferredExtensions[mt]; ok {
		return ext
	}
	for ext, m := range MimeTypes {
		if m == mt {
			return ext
		}
	}
	return ""
}

// IsISOBMFF reports whether the MIME type names an MP4-family container.
func IsISOBMFF(mimeType string) bool {
	return isoBMFFTypes[NormalizeMime(mimeType)]
}

// SniffMimeType guesses a MIME type from the first bytes of data. It
// recognizes every ftyp box as video/mp4, which http.DetectContentType only
// does for a handful of brands.
func SniffMimeType(data []byte) string {
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		brand := string(data[8:12])
		switch brand {
		case "heic", "heix", "mif1", "msf1":
			return "image/heic"
		case "avif", "avis":
			return "image/avif"
		case "qt  ":
			return "video/quicktime"
		}
		return "video/mp4"
	}
	return NormalizeMime(http.DetectContentType(data))
}
