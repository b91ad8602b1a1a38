package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "empty", input: "", expect: ""},
		{name: "collapses whitespace", input: "  Hello\t\tworld\n\nagain  ", expect: "Hello world again"},
		{name: "strips control characters", input: "Jane\x00 Doe\x07", expect: "Jane Doe"},
		{name: "drops invalid utf8", input: "Go\xff developer", expect: "Go developer"},
		{name: "folds compatibility forms", input: "ｆｕｌｌ width", expect: "full width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"plain",
		" \t\n ",
		"Name: Jane Q. Public\nEmail: jane.q.public@example.com\r\n\r\nPhone: +1 415-555-0199",
		"e\x00\u0301 composed",
		"tabs\tand\vvertical\fbreaks here",
	}

	for _, input := range inputs {
		once := Normalize(input)
		if twice := Normalize(once); twice != once {
			t.Fatalf("normalize is not idempotent for %q: %q != %q", input, twice, once)
		}
	}
}

func TestNormalizeBytesRejectsBinary(t *testing.T) {
	t.Parallel()

	if got := NormalizeBytes([]byte{0xff, 0xfe, 0x00, 0x01}); got != "" {
		t.Fatalf("expected empty string for binary input, got %q", got)
	}

	if got := NormalizeBytes([]byte(" resume  text ")); got != "resume text" {
		t.Fatalf("unexpected normalized bytes: %q", got)
	}
}

func TestSanitizeKeepsLines(t *testing.T) {
	t.Parallel()

	got := Sanitize("Name:  Jane\r\n\r\nEducation:\t BSc \x07\n")
	expect := "Name: Jane\n\nEducation: BSc"
	if got != expect {
		t.Fatalf("expected %q, got %q", expect, got)
	}
}

func TestCleanForVectorization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "drops stop words and punctuation", input: "The Python3 developer, C++ and Go!", expect: "python developer c go"},
		{name: "numbers only", input: "123 -- 2024", expect: ""},
		{name: "apostrophes split tokens", input: "Don't stop", expect: "don t stop"},
		{name: "empty", input: "", expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CleanForVectorization(tt.input, English()); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestStopWords(t *testing.T) {
	t.Parallel()

	stop := English()
	if stop.Len() != 179 {
		t.Fatalf("expected 179 english stop words, got %d", stop.Len())
	}

	for _, word := range []string{"the", "The", "and", "don't"} {
		if !stop.Contains(word) {
			t.Fatalf("expected %q to be a stop word", word)
		}
	}

	if stop.Contains("python") {
		t.Fatalf("python is not a stop word")
	}

	if (StopWords{}).Contains("the") {
		t.Fatalf("empty set must not contain anything")
	}
}
