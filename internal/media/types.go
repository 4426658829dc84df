package media

// MimeJPEG is the type tag of every Result.
const MimeJPEG = "image/jpeg"

// Media kinds, used as metric and log labels.
const (
	KindImage = "image"
	KindVideo = "video"
)

// Buffer is an encoded media payload plus the caller's MIME type tag.
// The pipeline only reads Data and never retains it past the call.
type Buffer struct {
	Data     []byte
	MimeType string
}

// Result is an encoded JPEG derivative. Ownership passes to the caller.
type Result struct {
	Data     []byte  `json:"-"`
	MimeType string  `json:"mimeType"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Quality  float64 `json:"quality"`
}

// Size returns the encoded length in bytes, 0 for a nil result.
func (r *Result) Size() int {
	if r == nil {
		return 0
	}
	return len(r.Data)
}

// Dimensions is a pixel size.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Pixels returns Width*Height.
func (d Dimensions) Pixels() int {
	return d.Width * d.Height
}
