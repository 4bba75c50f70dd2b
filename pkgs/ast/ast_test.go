package ast

import "testing"

func ptr[T any](v T) *T { return &v }

func TestFormatEmpty(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestFormatJoinsWithNewline(t *testing.T) {
	nodes := []Node{
		&Return{Loc_: 1},
		&Jump{Loc_: 2, Target: "elsewhere"},
	}
	want := "return\njump elsewhere"
	if got := Format(nodes); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReturnWithAndWithoutExpr(t *testing.T) {
	if got := (&Return{}).String(); got != "return" {
		t.Errorf("got %q, want %q", got, "return")
	}
	if got := (&Return{Expr: ptr("1 + 1")}).String(); got != "return 1 + 1" {
		t.Errorf("got %q, want %q", got, "return 1 + 1")
	}
}

func TestSceneWithAndWithoutImage(t *testing.T) {
	if got := (&Scene{Layer: "master"}).String(); got != "scene" {
		t.Errorf("got %q, want %q", got, "scene")
	}
	if got := (&Scene{Image: ptr("bg room"), Layer: "master"}).String(); got != "scene bg room" {
		t.Errorf("got %q, want %q", got, "scene bg room")
	}
}

func TestSayWithAndWithoutSpeaker(t *testing.T) {
	if got := (&Say{What: "Hi."}).String(); got != `"Hi."` {
		t.Errorf("got %q, want %q", got, `"Hi."`)
	}
	if got := (&Say{Speaker: ptr("eileen"), What: "Hi."}).String(); got != `eileen "Hi."` {
		t.Errorf("got %q, want %q", got, `eileen "Hi."`)
	}
}

// Stop's Effect/Seconds are dropped from the canonical form: round-tripping a
// fadeout clause is not guaranteed, matching the original implementation.
func TestStopDropsFadeoutFromCanonicalForm(t *testing.T) {
	s := &Stop{Kind: "music", Effect: ptr("fadeout"), Seconds: ptr(1.5)}
	if got := s.String(); got != "stop music" {
		t.Errorf("got %q, want %q", got, "stop music")
	}
}

func TestLabelWithAndWithoutBody(t *testing.T) {
	empty := &Label{Name: "a"}
	if got := empty.String(); got != "label a:" {
		t.Errorf("got %q, want %q", got, "label a:")
	}

	withBody := &Label{Name: "a", Body: []Node{&Return{}}}
	want := "label a:\n    return"
	if got := withBody.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLabelNestedBodyIndentsEachLevel(t *testing.T) {
	inner := &Label{Name: "inner", Body: []Node{&Return{}}}
	outer := &Label{Name: "outer", Body: []Node{inner}}
	want := "label outer:\n    label inner:\n        return"
	if got := outer.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInitWithPriority(t *testing.T) {
	zero := &Init{}
	if got := zero.String(); got != "init:" {
		t.Errorf("got %q, want %q", got, "init:")
	}
	withPriority := &Init{Priority: -5, Body: []Node{&Define{Text: "x = 1"}}}
	want := "init -5:\n    define x = 1"
	if got := withPriority.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLLMGenerateWithoutPrompt(t *testing.T) {
	n := &LLMGenerate{Who: "eileen"}
	want := `llm_generate eileen ""`
	if got := n.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCommentFormat(t *testing.T) {
	n := &Comment{Text: "a note"}
	if got := n.String(); got != "# a note" {
		t.Errorf("got %q, want %q", got, "# a note")
	}
}

func TestLocReturnsStoredLine(t *testing.T) {
	n := &Jump{Loc_: 42, Target: "x"}
	if n.Loc() != 42 {
		t.Errorf("got %d, want 42", n.Loc())
	}
}
