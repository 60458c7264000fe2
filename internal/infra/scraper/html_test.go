package scraper_test

import (
	"testing"

	"outbreak-feed/internal/infra/scraper"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "Cholera cases rising in the delta",
			want:  "Cholera cases rising in the delta",
		},
		{
			name:  "tags removed",
			input: "<p>Officials report <b>52</b> new cases.</p>",
			want:  "Officials report 52 new cases.",
		},
		{
			name:  "entities decoded",
			input: "Salmonella &amp; E. coli detected",
			want:  "Salmonella & E. coli detected",
		},
		{
			name:  "script dropped",
			input: "<p>Update</p><script>track()</script><p>issued</p>",
			want:  "Update issued",
		},
		{
			name:  "whitespace collapsed",
			input: "<div>  line one\n\n\tline   two </div>",
			want:  "line one line two",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scraper.StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
