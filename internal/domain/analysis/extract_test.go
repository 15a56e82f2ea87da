package analysis

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "bare object",
			text: `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "markdown fenced",
			text: "```json\n{\"woundType\": \"Cut\"}\n```",
			want: `{"woundType": "Cut"}`,
		},
		{
			name: "surrounding prose",
			text: `Sure! Here is the analysis: {"severity": "Low"} Hope this helps.`,
			want: `{"severity": "Low"}`,
		},
		{
			name: "nested objects",
			text: `{"outer": {"inner": [1, 2]}} trailing`,
			want: `{"outer": {"inner": [1, 2]}}`,
		},
		{
			name: "braces inside strings",
			text: `{"note": "a } inside \" a string {"}`,
			want: `{"note": "a } inside \" a string {"}`,
		},
		{
			name:    "no object",
			text:    "I cannot analyze this image.",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			text:    `{"woundType": "Cut"`,
			wantErr: true,
		},
		{
			name:    "empty",
			text:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSONObject error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeResult(t *testing.T) {
	text := "Here you go:\n```json\n" + validResultJSON + "\n```"
	result, err := DecodeResult(text)
	if err != nil {
		t.Fatalf("DecodeResult error: %v", err)
	}
	if result.Severity != SeverityLow || len(result.FirstAidSteps) != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if err := ValidateResult(result); err != nil {
		t.Errorf("decoded result should pass validation: %v", err)
	}
}

func TestDecodeResult_BadJSON(t *testing.T) {
	if _, err := DecodeResult(`{"severity": }`); err == nil {
		t.Error("expected parse error")
	}
}
