package domain

import (
	"mime"
	"path"
	"strings"
)

// imageTypes lists the raster formats a product image may use, by file extension.
// SVG is left out because it can carry script.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".avif": "image/avif",
}

// ImageExtension returns the file extension for an accepted image content type.
// Parameters such as charset are ignored.
func ImageExtension(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	if mediaType == "image/pjpeg" {
		mediaType = "image/jpeg"
	}
	for ext, t := range imageTypes {
		if t == mediaType {
			return ext, true
		}
	}
	return "", false
}

// ImageContentType returns the content type a stored image is served with
func ImageContentType(name string) (string, bool) {
	t, ok := imageTypes[strings.ToLower(path.Ext(name))]
	return t, ok
}
