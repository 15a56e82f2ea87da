package image

import "testing"

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantData  string
		wantMedia string
		wantFmt   string
	}{
		{
			name:      "jpeg data uri",
			input:     "data:image/jpeg;base64,/9j/4AAQ",
			wantData:  "/9j/4AAQ",
			wantMedia: "image/jpeg",
			wantFmt:   "jpeg",
		},
		{
			name:      "png data uri",
			input:     "data:image/png;base64,iVBORw0KGgo=",
			wantData:  "iVBORw0KGgo=",
			wantMedia: "image/png",
			wantFmt:   "png",
		},
		{
			name:      "bare base64 defaults to jpeg",
			input:     "/9j/4AAQSkZJRg==",
			wantData:  "/9j/4AAQSkZJRg==",
			wantMedia: "image/jpeg",
			wantFmt:   "jpeg",
		},
		{
			name:      "data prefix without comma treated as payload",
			input:     "data:image/jpeg",
			wantData:  "data:image/jpeg",
			wantMedia: "image/jpeg",
			wantFmt:   "jpeg",
		},
		{
			name:      "missing media type defaults",
			input:     "data:;base64,AAAA",
			wantData:  "AAAA",
			wantMedia: "image/jpeg",
			wantFmt:   "jpeg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDataURI(tt.input)
			if got.Data != tt.wantData {
				t.Errorf("Data = %q, want %q", got.Data, tt.wantData)
			}
			if got.MediaType != tt.wantMedia {
				t.Errorf("MediaType = %q, want %q", got.MediaType, tt.wantMedia)
			}
			if got.Format != tt.wantFmt {
				t.Errorf("Format = %q, want %q", got.Format, tt.wantFmt)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg header", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png header", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, "png"},
		{"unknown defaults to jpeg", []byte{0x00, 0x01, 0x02, 0x03}, "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data); got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}
