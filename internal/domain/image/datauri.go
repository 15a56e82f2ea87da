package image

import "strings"

const defaultMediaType = "image/jpeg"

// ParseDataURI splits an encoded image string into its base64 payload and
// media type. The expected framing is data:<mediaType>;base64,<payload>;
// when the prefix is absent the whole string is treated as the payload and
// the media type defaults to a generic raster type.
func ParseDataURI(encoded string) Payload {
	if !strings.HasPrefix(encoded, "data:") {
		return Payload{Data: encoded, MediaType: defaultMediaType, Format: formatFromMediaType(defaultMediaType)}
	}

	rest := strings.TrimPrefix(encoded, "data:")
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return Payload{Data: encoded, MediaType: defaultMediaType, Format: formatFromMediaType(defaultMediaType)}
	}

	meta := rest[:comma]
	payload := rest[comma+1:]

	mediaType := meta
	if semi := strings.Index(meta, ";"); semi >= 0 {
		mediaType = meta[:semi]
	}
	if mediaType == "" {
		mediaType = defaultMediaType
	}

	return Payload{
		Data:      payload,
		MediaType: mediaType,
		Format:    formatFromMediaType(mediaType),
	}
}

func formatFromMediaType(mediaType string) string {
	lower := strings.ToLower(mediaType)
	switch {
	case strings.Contains(lower, "jpeg"), strings.Contains(lower, "jpg"):
		return "jpeg"
	case strings.Contains(lower, "png"):
		return "png"
	case strings.Contains(lower, "gif"):
		return "gif"
	case strings.Contains(lower, "webp"):
		return "webp"
	case strings.Contains(lower, "bmp"):
		return "bmp"
	default:
		return ""
	}
}

// DetectFormat sniffs the image format from magic bytes, defaulting to jpeg.
func DetectFormat(data []byte) string {
	for format, signature := range imageSignatures {
		if format == "jpg" {
			continue
		}
		if len(data) >= len(signature) && hasPrefix(data, signature) {
			return format
		}
	}
	return "jpeg"
}

func hasPrefix(data, prefix []byte) bool {
	for i := range prefix {
		if data[i] != prefix[i] {
			return false
		}
	}
	return true
}
