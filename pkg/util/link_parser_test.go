// Package util provides common utility functions
package util

import (
	"testing"
)

func TestParseWikiRefs(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []WikiRef
	}{
		// Basic references
		{
			name: "simple reference",
			body: "Check out [[Meeting Notes]] for more info",
			expected: []WikiRef{
				{Title: "Meeting Notes", ExplicitID: ""},
			},
		},
		{
			name: "reference with explicit id",
			body: "See [[Meeting Notes|9f8e6a7c]] here",
			expected: []WikiRef{
				{Title: "Meeting Notes", ExplicitID: "9f8e6a7c"},
			},
		},
		{
			name: "title with spaces",
			body: "[[Project Kickoff Plan]]",
			expected: []WikiRef{
				{Title: "Project Kickoff Plan", ExplicitID: ""},
			},
		},

		// Should NOT capture - markdown links and malformed tokens
		{
			name:     "markdown external link",
			body:     "Check [Display Text](https://example.com) here",
			expected: nil,
		},
		{
			name:     "unterminated token ignored",
			body:     "Broken [[Meeting Notes and nothing closes it",
			expected: nil,
		},
		{
			name:     "single brackets ignored",
			body:     "Just a [checkbox] item",
			expected: nil,
		},
		{
			name:     "empty token ignored",
			body:     "Empty [[]] token",
			expected: nil,
		},

		// Edge cases
		{
			name:     "empty body",
			body:     "",
			expected: nil,
		},
		{
			name:     "no references",
			body:     "Just plain text without any references",
			expected: nil,
		},
		{
			name: "multiple references in document order",
			body: "[[Alpha]] then [[Beta]] then [[Gamma|g-1]]",
			expected: []WikiRef{
				{Title: "Alpha", ExplicitID: ""},
				{Title: "Beta", ExplicitID: ""},
				{Title: "Gamma", ExplicitID: "g-1"},
			},
		},
		{
			name: "duplicate occurrences are all returned",
			body: "[[Note]] appears twice [[Note]]",
			expected: []WikiRef{
				{Title: "Note", ExplicitID: ""},
				{Title: "Note", ExplicitID: ""},
			},
		},
		{
			name: "unterminated token followed by valid one",
			body: "[[Broken then [[Valid]]",
			expected: []WikiRef{
				{Title: "Valid", ExplicitID: ""},
			},
		},
		{
			name: "unterminated token between valid ones",
			body: "[[Alpha]] then [[Broken and [[Beta]] last",
			expected: []WikiRef{
				{Title: "Alpha", ExplicitID: ""},
				{Title: "Beta", ExplicitID: ""},
			},
		},

		// Embeds
		{
			name: "embed is recognized and flagged",
			body: "Inline ![[Diagram]] content",
			expected: []WikiRef{
				{Title: "Diagram", ExplicitID: "", IsEmbed: true},
			},
		},
		{
			name: "embed next to plain reference",
			body: "![[Diagram]] and [[Alpha]]",
			expected: []WikiRef{
				{Title: "Diagram", ExplicitID: "", IsEmbed: true},
				{Title: "Alpha", ExplicitID: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseWikiRefs(tt.body)

			if len(result) != len(tt.expected) {
				t.Errorf("ParseWikiRefs(%q) returned %d refs, want %d", tt.body, len(result), len(tt.expected))
				t.Errorf("Got: %+v", result)
				t.Errorf("Want: %+v", tt.expected)
				return
			}

			for i, ref := range result {
				if ref.Title != tt.expected[i].Title {
					t.Errorf("Ref[%d].Title = %q, want %q", i, ref.Title, tt.expected[i].Title)
				}
				if ref.ExplicitID != tt.expected[i].ExplicitID {
					t.Errorf("Ref[%d].ExplicitID = %q, want %q", i, ref.ExplicitID, tt.expected[i].ExplicitID)
				}
				if ref.IsEmbed != tt.expected[i].IsEmbed {
					t.Errorf("Ref[%d].IsEmbed = %v, want %v", i, ref.IsEmbed, tt.expected[i].IsEmbed)
				}
			}
		})
	}
}

func TestParseWikiRefs_Ranges(t *testing.T) {
	body := "Start [[Alpha]] middle [[Beta|b-2]] end"

	result := ParseWikiRefs(body)
	if len(result) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(result))
	}

	// Each range must slice back to the full token
	// 每个范围必须能切回完整的 token
	if got := body[result[0].RangeStart:result[0].RangeEnd]; got != "[[Alpha]]" {
		t.Errorf("range 0 slices to %q, want %q", got, "[[Alpha]]")
	}
	if got := body[result[1].RangeStart:result[1].RangeEnd]; got != "[[Beta|b-2]]" {
		t.Errorf("range 1 slices to %q, want %q", got, "[[Beta|b-2]]")
	}
}

func TestParseWikiRefs_Deterministic(t *testing.T) {
	body := `# Weekly Review

Linked items:
- [[Team Meet]]
- [[Meeting Notes|explicit-id]]
- [[Quarterly Goals]]

A markdown link that should NOT be captured: [External](https://example.com)
`

	first := ParseWikiRefs(body)
	second := ParseWikiRefs(body)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 refs on both passes, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("pass mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
