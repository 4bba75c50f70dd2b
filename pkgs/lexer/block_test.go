package lexer

import (
	"strings"
	"testing"
)

func mustScan(t *testing.T, text string) []LogicalLine {
	t.Helper()
	lines, err := Scan(text, "script.rpy")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return lines
}

func TestGroupNestedBlocks(t *testing.T) {
	lines := mustScan(t, "label start:\n    \"Hello, world.\"\n    return\n")
	blocks, err := Group(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected one top-level block, got %d", len(blocks))
	}
	root := blocks[0]
	if root.Text != "label start:" {
		t.Errorf("unexpected root text: %q", root.Text)
	}
	if strings.HasPrefix(root.Text, " ") {
		t.Errorf("Block.Text must not start with a space: %q", root.Text)
	}
	if len(root.Subblocks) != 2 {
		t.Fatalf("expected two subblocks, got %d", len(root.Subblocks))
	}
	if root.Subblocks[0].Text != `"Hello, world."` {
		t.Errorf("unexpected subblock text: %q", root.Subblocks[0].Text)
	}
	if root.Subblocks[1].Text != "return" {
		t.Errorf("unexpected subblock text: %q", root.Subblocks[1].Text)
	}
}

func TestGroupFlatSiblings(t *testing.T) {
	lines := mustScan(t, "scene bg room\nshow eileen happy\n\"Hi.\"\nhide eileen\nreturn\n")
	blocks, err := Group(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 5 {
		t.Fatalf("expected five top-level blocks, got %d", len(blocks))
	}
	for _, b := range blocks {
		if len(b.Subblocks) != 0 {
			t.Errorf("expected no subblocks for %q", b.Text)
		}
	}
}

// A deeper line always nests as a child of the preceding sibling (matching
// original_source/src/lib.rs's group_logical_lines): "label a:\n \"x\"\n
// \"y\"\n" with x at depth 1 and y at depth 2 parses without error, with y
// nested under x, rather than raising an indentation mismatch at line 3 —
// see DESIGN.md for why spec.md's literal scenario 5 input does not, in
// fact, reach the mismatch branch of the documented algorithm. A real
// mismatch needs a sibling that is shallower than an already-established
// depth but not shallow enough to pop out of the group.
func TestGroupDeeperLineNestsRatherThanMismatches(t *testing.T) {
	lines := mustScan(t, "label a:\n \"x\"\n  \"y\"\n")
	blocks, err := Group(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := blocks[0]
	if len(root.Subblocks) != 1 || root.Subblocks[0].Text != `"x"` {
		t.Fatalf("expected a single child \"x\", got %#v", root.Subblocks)
	}
	x := root.Subblocks[0]
	if len(x.Subblocks) != 1 || x.Subblocks[0].Text != `"y"` {
		t.Fatalf("expected \"y\" nested under \"x\", got %#v", x.Subblocks)
	}
}

func TestGroupIndentationMismatch(t *testing.T) {
	lines := mustScan(t, "label a:\n  \"x\"\n \"y\"\n")
	_, err := Group(lines)
	if err == nil {
		t.Fatal("expected indentation mismatch error")
	}
	if !strings.Contains(err.Error(), "indentation mismatch") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected error to name line 3, got: %v", err)
	}
}

func TestGroupEmptyInput(t *testing.T) {
	blocks, err := Group(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %v", blocks)
	}
}
