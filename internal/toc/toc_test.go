package toc

import (
	"strings"
	"testing"
)

func TestIndex_InjectsAnchors(t *testing.T) {
	in := "<h2>Getting Started</h2>\n<p>x</p>\n<h3>Install Go</h3>\n"
	out, hs := Index(in)
	if len(hs) != 2 {
		t.Fatalf("len(headings) = %d, want 2", len(hs))
	}
	want := "<h2 id=\"getting-started\">Getting Started</h2>\n<p>x</p>\n<h3 id=\"install-go\">Install Go</h3>\n"
	if out != want {
		t.Errorf("out = %q, want %q", out, want)
	}
	if hs[1].Level != 3 || hs[1].Text != "Install Go" {
		t.Errorf("heading = %+v", hs[1])
	}
}

func TestIndex_IgnoresOtherLevels(t *testing.T) {
	in := "<h1>A</h1>\n<h4>B</h4>\n<h5>C</h5>\n<h2>D</h2>\n"
	out, hs := Index(in)
	if len(hs) != 1 || hs[0].Text != "D" {
		t.Fatalf("headings = %+v", hs)
	}
	if !strings.Contains(out, "<h1>A</h1>") || !strings.Contains(out, "<h4>B</h4>") {
		t.Errorf("non-indexed headings modified: %q", out)
	}
}

func TestIndex_DuplicateHeadingsShareFirstAnchor(t *testing.T) {
	in := "<h2>Notes</h2>\n<h2>Notes</h2>\n"
	out, hs := Index(in)
	if len(hs) != 2 {
		t.Fatalf("len(headings) = %d, want 2", len(hs))
	}
	if got := strings.Count(out, `id="notes"`); got != 1 {
		t.Errorf("anchor count = %d, want 1: %q", got, out)
	}
	if !strings.HasPrefix(out, `<h2 id="notes">Notes</h2>`) {
		t.Errorf("first heading should carry the anchor: %q", out)
	}
}

func TestIndex_RepeatedHeadingAnchoredOnce(t *testing.T) {
	in := "<h2>Notes</h2>\n<h2>Notes</h2>\n<h2>Notes</h2>\n<h3>Notes</h3>\n"
	out, hs := Index(in)
	if len(hs) != 4 {
		t.Fatalf("len(headings) = %d, want 4", len(hs))
	}
	want := "<h2 id=\"notes\">Notes</h2>\n<h2>Notes</h2>\n<h2>Notes</h2>\n<h3 id=\"notes\">Notes</h3>\n"
	if out != want {
		t.Errorf("out = %q, want %q", out, want)
	}
	if entries := Build(hs); len(entries) != 4 {
		t.Errorf("toc entries = %d, want 4", len(entries))
	}
}

func TestSlugify_DropsCombiningMarks(t *testing.T) {
	if got := Slugify("e\u0301clair"); got != "e-clair" {
		t.Errorf("Slugify = %q, want %q", got, "e-clair")
	}
}

func TestIndex_NestedMarkupStripped(t *testing.T) {
	in := "<h2><strong>Bold</strong> title</h2>\n"
	out, hs := Index(in)
	if len(hs) != 1 || hs[0].Text != "Bold title" || hs[0].Slug != "bold-title" {
		t.Fatalf("headings = %+v", hs)
	}
	if out != in {
		t.Errorf("heading with nested markup should not be annotated: %q", out)
	}
}

func TestIndex_EntitiesDecodedForText(t *testing.T) {
	_, hs := Index("<h2>Q &amp; A</h2>\n")
	if len(hs) != 1 || hs[0].Text != "Q & A" || hs[0].Slug != "q-a" {
		t.Errorf("headings = %+v", hs)
	}
}

func TestIndex_EmptyHeadingSkipped(t *testing.T) {
	_, hs := Index("<h2></h2>\n<h3> <em></em> </h3>\n")
	if len(hs) != 0 {
		t.Errorf("headings = %+v, want none", hs)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":   "hello-world",
		"  --Edge--  ":    "edge",
		"楞嚴經 第一章":          "楞嚴經-第一章",
		"snake_case stays": "snake_case-stays",
		strings.Repeat("a", 50): strings.Repeat("a", 40),
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuild_Threshold(t *testing.T) {
	_, two := Index("<h2>A</h2>\n<h2>B</h2>\n")
	if entries := Build(two); entries != nil {
		t.Errorf("2 headings should produce no toc, got %+v", entries)
	}

	_, three := Index("<h2>A</h2>\n<h3>B</h3>\n<h2>C</h2>\n")
	entries := Build(three)
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, want := range []string{"A", "B", "C"} {
		if entries[i].Text != want {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Text, want)
		}
	}
	if !entries[1].Nested() || entries[0].Nested() {
		t.Errorf("nesting hints wrong: %+v", entries)
	}
}
