// Package parser is the statement-level recursive-descent parser. It drives
// a lexer.Cursor, recognises Ren'Py statement forms, and produces
// ast.Node values plus a list of non-fatal parse errors.
package parser

import (
	"os"

	"github.com/aledsdavies/renpyparse/pkgs/ast"
	"github.com/aledsdavies/renpyparse/pkgs/lexer"
	"github.com/aledsdavies/renpyparse/pkgs/perr"
)

// ParseScenarioFromFile reads and parses a file. Errors during read are
// fatal, matching every other fatal condition in this pipeline.
func ParseScenarioFromFile(path string) ([]ast.Node, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, perr.New(perr.IoError, perr.ElideFilename(path), 0, err.Error())
	}
	return ParseScenario(string(data), path)
}

// ParseScenario parses in-memory text under filename, running all three
// passes: line scanning, block grouping, and statement parsing.
func ParseScenario(text, filename string) ([]ast.Node, []string, error) {
	lines, err := lexer.Scan(text, filename)
	if err != nil {
		return nil, nil, err
	}
	blocks, err := lexer.Group(lines)
	if err != nil {
		return nil, nil, err
	}
	cursor := lexer.NewCursor(blocks, false)
	nodes, errs := ParseBlock(cursor)
	return nodes, errs, nil
}

// ListLogicalLines runs the line scanner only, stage 1 of the pipeline.
func ListLogicalLines(text, filename string) ([]lexer.LogicalLine, error) {
	return lexer.Scan(text, filename)
}

// ListLogicalLinesFromFile reads path and runs the line scanner only.
func ListLogicalLinesFromFile(path string) ([]lexer.LogicalLine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.New(perr.IoError, perr.ElideFilename(path), 0, err.Error())
	}
	return lexer.Scan(string(data), path)
}

// GroupLogicalLines runs the block grouper only, stage 2 of the pipeline.
func GroupLogicalLines(lines []lexer.LogicalLine) ([]lexer.Block, error) {
	return lexer.Group(lines)
}

// ParseBlock parses every sibling in cursor, collecting non-fatal errors.
// A failing statement is skipped (the cursor advances past it) so parsing
// resumes at the next sibling; errors never escalate to fatal at this
// level.
func ParseBlock(cursor *lexer.Cursor) ([]ast.Node, []string) {
	var nodes []ast.Node
	var errs []string

	cursor.Advance()

	for !cursor.EOB() {
		node, err := parseStatement(cursor, &errs)
		if err != nil {
			errs = append(errs, err.Error())
			cursor.Advance()
			continue
		}
		nodes = append(nodes, node)
	}

	return nodes, errs
}

// parseStatement tries keyword dispatch in a fixed order; the first
// matching keyword commits to its branch. errsOut accumulates soft errors
// raised by compound statements (label, init) recursing into a sub-block:
// per the design note in SPEC_FULL.md, a child-block error is merged into
// the caller's soft-error list rather than escalated to fatal.
func parseStatement(c *lexer.Cursor, errsOut *[]string) (ast.Node, error) {
	loc := c.Loc()

	if _, ok := c.Keyword("return"); ok {
		if err := c.ExpectNoblock("return statement"); err != nil {
			return nil, err
		}
		rest := c.Rest()
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		c.Advance()
		var expr *string
		if rest != "" {
			expr = &rest
		}
		return &ast.Return{Loc_: loc, Expr: expr}, nil
	}

	if _, ok := c.Keyword("jump"); ok {
		if err := c.ExpectNoblock("jump statement"); err != nil {
			return nil, err
		}
		target, ok := c.Name()
		if !ok {
			return nil, c.Error("expected a label name after 'jump'")
		}
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		c.Advance()
		return &ast.Jump{Loc_: loc, Target: target, IsExpression: false}, nil
	}

	if _, ok := c.Keyword("scene"); ok {
		if err := c.ExpectNoblock("scene statement"); err != nil {
			return nil, err
		}
		if c.EOL() {
			c.Advance()
			return &ast.Scene{Loc_: loc, Image: nil, Layer: "master"}, nil
		}
		imspec := parseImageSpecifier(c)
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		c.Advance()
		return &ast.Scene{Loc_: loc, Image: &imspec, Layer: "master"}, nil
	}

	if _, ok := c.Keyword("show"); ok {
		imspec := parseImageSpecifier(c)
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		if err := c.ExpectNoblock("show statement"); err != nil {
			return nil, err
		}
		c.Advance()
		return &ast.Show{Loc_: loc, Image: imspec}, nil
	}

	if _, ok := c.Keyword("hide"); ok {
		imspec := parseImageSpecifier(c)
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		if err := c.ExpectNoblock("hide statement"); err != nil {
			return nil, err
		}
		c.Advance()
		return &ast.Hide{Loc_: loc, Image: imspec}, nil
	}

	if _, ok := c.Keyword("play"); ok {
		kind, err := parseAudioKind(c)
		if err != nil {
			return nil, err
		}
		filename, err := parseAudioFilename(c)
		if err != nil {
			return nil, err
		}
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		c.Advance()
		return &ast.Play{Loc_: loc, Kind: kind, Filename: filename}, nil
	}

	if _, ok := c.Keyword("stop"); ok {
		kind, err := parseAudioKind(c)
		if err != nil {
			return nil, err
		}
		effect, seconds, hasArgs := c.StopArguments()
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		c.Advance()
		node := &ast.Stop{Loc_: loc, Kind: kind}
		if hasArgs {
			node.Effect = &effect
			node.Seconds = &seconds
		}
		return node, nil
	}

	if _, ok := c.Keyword("label"); ok {
		name, _ := c.Name()
		subCursor := c.SubblockCursor(false)
		body, childErrs := ParseBlock(subCursor)
		*errsOut = append(*errsOut, childErrs...)
		c.Advance()
		return &ast.Label{Loc_: loc, Name: name, Body: body, Parameters: nil}, nil
	}

	if _, ok := c.Keyword("init"); ok {
		priority := 0
		if digits, ok := c.Integer(); ok {
			priority = atoiSigned(digits)
		}
		if _, ok := c.Match(":"); !ok {
			return nil, c.Error("expected ':' after init")
		}
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		if err := c.ExpectBlock("init statement"); err != nil {
			return nil, err
		}
		subCursor := c.SubblockCursor(true)
		body, childErrs := ParseBlock(subCursor)
		*errsOut = append(*errsOut, childErrs...)
		c.Advance()
		return &ast.Init{Loc_: loc, Body: body, Priority: priority}, nil
	}

	if _, ok := c.Keyword("define"); ok {
		definition := c.Rest()
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		c.Advance()
		return &ast.Define{Loc_: loc, Text: definition}, nil
	}

	if _, ok := c.Keyword("game_mechanic"); ok {
		text, ok := c.String()
		if !ok {
			return nil, c.Error("expected a string after 'game_mechanic'")
		}
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		if err := c.ExpectNoblock("game_mechanic statement"); err != nil {
			return nil, err
		}
		c.Advance()
		return &ast.GameMechanic{Loc_: loc, Text: text}, nil
	}

	if _, ok := c.Keyword("llm_generate"); ok {
		who, ok := c.Word()
		if !ok {
			return nil, c.Error("expected a word after 'llm_generate'")
		}
		prompt, hasPrompt := c.String()
		if err := c.ExpectEOL(); err != nil {
			return nil, err
		}
		if err := c.ExpectNoblock("llm_generate statement"); err != nil {
			return nil, err
		}
		c.Advance()
		node := &ast.LLMGenerate{Loc_: loc, Who: who}
		if hasPrompt {
			node.Prompt = &prompt
		}
		return node, nil
	}

	return parseSayFallback(c, loc)
}

// parseSayFallback disambiguates the unknown-leading-word case between a
// character-dialogue shorthand and a bare narrator line, using
// checkpoint/revert for each speculative attempt.
func parseSayFallback(c *lexer.Cursor, loc int) (ast.Node, error) {
	snapshot := c.Checkpoint()

	if word, ok := c.Word(); ok {
		if what, ok := c.String(); ok {
			if err := c.ExpectNoblock(word + " statement"); err == nil {
				c.Advance()
				return &ast.Say{Loc_: loc, Speaker: &word, What: what}, nil
			}
		}
	}

	c.Revert(snapshot)
	if what, ok := c.String(); ok && c.EOL() {
		if err := c.ExpectNoblock("say statement"); err == nil {
			c.Advance()
			return &ast.Say{Loc_: loc, Speaker: nil, What: what}, nil
		}
	}

	c.Revert(snapshot)
	if expr, ok := parseSimpleExpression(c); ok {
		if what, ok := c.String(); ok {
			if c.ExpectEOL() == nil && c.ExpectNoblock("say statement") == nil {
				c.Advance()
				return &ast.Say{Loc_: loc, Speaker: &expr, What: what}, nil
			}
		}
	}

	c.Revert(snapshot)
	return nil, c.Error("expected statement.")
}

// parseImageSpecifier reads successive name() tokens until exhausted,
// joining them with single spaces. The grammar does not parse `at`,
// `onlayer`, `zorder`, or `behind` clauses; layer is always "master".
func parseImageSpecifier(c *lexer.Cursor) string {
	var names []string
	for {
		name, ok := c.Name()
		if !ok {
			break
		}
		names = append(names, name)
	}
	return joinSpace(names)
}

func parseAudioKind(c *lexer.Cursor) (string, error) {
	kind, ok := c.Name()
	if !ok || (kind != "music" && kind != "sound") {
		return "", c.Error("expected 'music' or 'sound'")
	}
	return kind, nil
}

func parseAudioFilename(c *lexer.Cursor) (string, error) {
	quoted, ok := c.AudioFilename()
	if !ok {
		return "", c.Error("expected an audio filename ending in an extension (e.g. mp3, ogg, wav)")
	}
	return quoted[1 : len(quoted)-1], nil
}

// parseSimpleExpression captures the slice between the current position
// and the next break, following dotted-attribute continuations. This is a
// deliberate simplification per spec §9: a production implementation would
// handle operator tokens, parentheses, and full attribute access.
func parseSimpleExpression(c *lexer.Cursor) (string, bool) {
	if c.EOL() {
		return "", false
	}
	start := c.Pos()
	if _, ok := c.Word(); !ok {
		return "", false
	}
	end := c.Pos()

	for !c.EOL() {
		if _, ok := c.Match(`\.`); ok {
			if _, ok := c.Name(); !ok {
				return "", false
			}
			end = c.Pos()
			continue
		}
		break
	}

	text := c.TextFrom(start)[:end-start]
	if text == "" {
		return "", false
	}
	return text, true
}

func joinSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

func atoiSigned(s string) int {
	neg := false
	i := 0
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		i = 1
	}
	n := 0
	for ; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}
