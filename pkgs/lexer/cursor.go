package lexer

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/aledsdavies/renpyparse/pkgs/perr"
)

// keywords are the reserved identifiers name() refuses to return. The set
// covers every statement keyword this grammar recognises plus the wider
// Ren'Py reserved-word surface (clauses this grammar doesn't parse, such as
// `if`/`menu`/`python`/`with`), so that an image or label name can never
// collide with a word a future grammar extension would need.
var keywords = map[string]struct{}{
	"hide": {}, "jump": {}, "return": {}, "scene": {}, "show": {},
	"play": {}, "stop": {}, "define": {}, "game_mechanic": {},
	"llm_generate": {}, "scene_generate": {}, "music_generate": {},
	"init": {}, "label": {},
	"as": {}, "at": {}, "behind": {}, "call": {}, "expression": {},
	"if": {}, "image": {}, "menu": {}, "onlayer": {}, "python": {},
	"set": {}, "while": {}, "with": {}, "zorder": {},
}

var (
	reCacheMu sync.Mutex
	reCache   = make(map[string]*regexp.Regexp)
)

func compile(pattern string) *regexp.Regexp {
	reCacheMu.Lock()
	defer reCacheMu.Unlock()
	if re, ok := reCache[pattern]; ok {
		return re
	}
	re := regexp.MustCompile(pattern)
	reCache[pattern] = re
	return re
}

const (
	nameBodyClass = `\w\x{00A0}-\x{FFFD}.\-`
	nameHeadClass = `A-Za-z_\x{00A0}-\x{FFFD}`
)

var (
	wsPattern       = `\s+`
	namePattern     = `[` + nameHeadClass + `][` + nameBodyClass + `]*`
	wordPattern     = `[` + nameHeadClass + `][\w\x{00A0}-\x{FFFD}]*`
	integerPattern  = `(\+|-)?[0-9]+`
	floatPattern    = `(\+|-)?([0-9]+\.[0-9]*|[0-9]*\.[0-9]+)([eE][-+]?[0-9]+)?`
	dqStringPat     = `r?"([^\\"]|\\.)*"`
	sqStringPat     = `r?'([^\\']|\\.)*'`
	btStringPat     = "r?`([^\\\\`]|\\\\.)*`"
	audioFilePat    = `"[^"]*\.[A-Za-z0-9]+"`
	fadeoutPat      = `fadeout\s+(\d+\.\d+)`
	uEscapePattern  = regexp.MustCompile(`\\u([0-9a-fA-F]{1,4})`)
	backslashEscape = regexp.MustCompile(`\\.`)
	collapseSpace   = regexp.MustCompile(`\s+`)
)

// state is a checkpoint/revert snapshot. Only the current block's fields
// (filename, line number, text, subblocks) and the intra-line position are
// captured — line iteration (lineIndex/eob) is not
// restored, because statement dispatch never advances past the current
// block before committing to a branch.
type state struct {
	filename   string
	lineNumber int
	text       string
	subblocks  []Block
	pos        int
}

// Cursor is a mutable regex-driven cursor over a sequence of sibling
// Blocks. Advance() moves to the next sibling; the string/name/number
// primitives below operate within the current block's text.
type Cursor struct {
	blocks    []Block
	lineIndex int
	eob       bool
	init      bool

	filename   string
	lineNumber int
	text       string
	subblocks  []Block
	pos        int
}

// NewCursor returns a Cursor positioned before the first block. The first
// call to Advance moves it to block index 0.
func NewCursor(blocks []Block, init bool) *Cursor {
	return &Cursor{blocks: blocks, lineIndex: -1, init: init}
}

// Init reports whether this cursor (or an ancestor) was created in an init
// context. Threaded by OR through SubblockCursor so a future `init python`
// block can observe it without reanalysing its parent.
func (c *Cursor) Init() bool { return c.init }

// EOB reports whether Advance has moved past the last sibling block.
func (c *Cursor) EOB() bool { return c.eob }

// Loc returns the current block's source line number, the conventional
// location token carried by every AST node.
func (c *Cursor) Loc() int { return c.lineNumber }

// Filename returns the current block's filename.
func (c *Cursor) Filename() string { return c.filename }

// Subblocks returns the current block's nested blocks.
func (c *Cursor) Subblocks() []Block { return c.subblocks }

// Pos returns the current column offset within the current block's text.
func (c *Cursor) Pos() int { return c.pos }

// TextFrom returns the slice of the current block's text between start
// and the cursor's current position.
func (c *Cursor) TextFrom(start int) string { return c.text[start:c.pos] }

// Advance moves to the next sibling block, resetting the intra-line
// position. It returns false once every block has been consumed.
func (c *Cursor) Advance() bool {
	c.lineIndex++
	if c.lineIndex >= len(c.blocks) {
		c.eob = true
		return false
	}

	b := c.blocks[c.lineIndex]
	c.filename = b.Filename
	c.lineNumber = b.LineNumber
	c.text = b.Text
	c.subblocks = b.Subblocks
	c.pos = 0
	return true
}

// SubblockCursor returns a new Cursor scoped to the current block's
// subblocks, with init ORed into the child's init flag.
func (c *Cursor) SubblockCursor(initFlag bool) *Cursor {
	return NewCursor(c.subblocks, c.init || initFlag)
}

// Checkpoint snapshots the intra-line cursor state for speculative parsing.
func (c *Cursor) Checkpoint() state {
	return state{
		filename:   c.filename,
		lineNumber: c.lineNumber,
		text:       c.text,
		subblocks:  c.subblocks,
		pos:        c.pos,
	}
}

// Revert restores a snapshot taken by Checkpoint. Block iteration is not
// restored — revert is intra-line only.
func (c *Cursor) Revert(s state) {
	c.filename = s.filename
	c.lineNumber = s.lineNumber
	c.text = s.text
	c.subblocks = s.subblocks
	c.pos = s.pos
}

func (c *Cursor) matchRegexp(pattern string) (string, bool) {
	if c.eob || c.pos >= len(c.text) {
		return "", false
	}
	re := compile(`^(?:` + pattern + `)`)
	loc := re.FindStringIndex(c.text[c.pos:])
	if loc == nil {
		return "", false
	}
	matched := c.text[c.pos+loc[0] : c.pos+loc[1]]
	c.pos += loc[1]
	return matched, true
}

func (c *Cursor) skipWhitespace() {
	c.matchRegexp(wsPattern)
}

// Match skips whitespace, then attempts pattern anchored at the current
// position. On success pos advances past the match.
func (c *Cursor) Match(pattern string) (string, bool) {
	c.skipWhitespace()
	return c.matchRegexp(pattern)
}

// Keyword matches word, refusing a match that is a prefix of a longer
// identifier (i.e. requiring a trailing word boundary).
func (c *Cursor) Keyword(word string) (string, bool) {
	return c.Match(regexp.QuoteMeta(word) + `\b`)
}

// Name matches an identifier; if the matched text is a reserved keyword the
// position is rewound and Name returns false.
func (c *Cursor) Name() (string, bool) {
	oldPos := c.pos
	word, ok := c.Match(namePattern)
	if !ok {
		return "", false
	}
	if _, reserved := keywords[word]; reserved {
		c.pos = oldPos
		return "", false
	}
	return word, true
}

// Word matches a more permissive identifier with no keyword check.
func (c *Cursor) Word() (string, bool) {
	return c.Match(wordPattern)
}

// String matches a "...", '...', or `...` literal, optionally r-prefixed.
// Unless raw-prefixed, \n decodes to newline, \uXXXX decodes to a single
// byte (the historical, non-codepoint behaviour this grammar preserves),
// any other backslash escape drops to the following character verbatim,
// and internal whitespace runs collapse to a single space.
func (c *Cursor) String() (string, bool) {
	raw, ok := c.Match(dqStringPat)
	if !ok {
		raw, ok = c.Match(sqStringPat)
	}
	if !ok {
		raw, ok = c.Match(btStringPat)
	}
	if !ok {
		return "", false
	}

	body := raw
	isRaw := strings.HasPrefix(body, "r")
	if isRaw {
		body = body[1:]
	}
	body = body[1 : len(body)-1] // strip delimiters

	if isRaw {
		return body, true
	}

	body = strings.ReplaceAll(body, `\n`, "\n")
	body = uEscapePattern.ReplaceAllStringFunc(body, func(m string) string {
		hex := uEscapePattern.FindStringSubmatch(m)[1]
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return m
		}
		return string([]byte{byte(v)})
	})
	body = backslashEscape.ReplaceAllStringFunc(body, func(m string) string {
		return m[1:]
	})
	body = collapseSpace.ReplaceAllString(body, " ")

	return body, true
}

// Integer matches a signed integer lexeme.
func (c *Cursor) Integer() (string, bool) {
	return c.Match(integerPattern)
}

// Float matches a signed floating-point lexeme.
func (c *Cursor) Float() (string, bool) {
	return c.Match(floatPattern)
}

// AudioFilename matches a double-quoted string whose inner text ends in
// .<ext>; the caller strips the quotes.
func (c *Cursor) AudioFilename() (string, bool) {
	return c.Match(audioFilePat)
}

// StopArguments matches an optional `fadeout N.N` clause.
func (c *Cursor) StopArguments() (effect string, seconds float64, ok bool) {
	c.skipWhitespace()
	if c.pos >= len(c.text) {
		return "", 0, false
	}
	re := compile(`^(?:` + fadeoutPat + `)`)
	loc := re.FindStringSubmatchIndex(c.text[c.pos:])
	if loc == nil {
		return "", 0, false
	}
	secText := c.text[c.pos+loc[2] : c.pos+loc[3]]
	c.pos += loc[1]
	seconds, _ = strconv.ParseFloat(secText, 64)
	return "fadeout", seconds, true
}

// Rest skips whitespace and consumes and returns the remainder of the
// current line.
func (c *Cursor) Rest() string {
	c.skipWhitespace()
	rest := c.text[c.pos:]
	c.pos = len(c.text)
	return rest
}

// EOL reports whether only whitespace remains on the current line.
func (c *Cursor) EOL() bool {
	c.skipWhitespace()
	return c.pos >= len(c.text)
}

// ExpectEOL asserts EOL, returning a located error otherwise.
func (c *Cursor) ExpectEOL() error {
	if !c.EOL() {
		return c.Error("end of line expected")
	}
	return nil
}

// ExpectNoblock asserts the current block has no subblocks.
func (c *Cursor) ExpectNoblock(stmt string) error {
	if len(c.subblocks) != 0 {
		return c.Error(stmt + " does not expect a block. Please check the indentation of the line after this one.")
	}
	return nil
}

// ExpectBlock asserts the current block has a non-empty subblock.
func (c *Cursor) ExpectBlock(stmt string) error {
	if len(c.subblocks) == 0 {
		return c.Error(stmt + " expects a non-empty block.")
	}
	return nil
}

// Error constructs a located ParseError at the cursor's current position.
func (c *Cursor) Error(msg string) *perr.ParseError {
	return perr.NewWithContext(perr.SyntaxError, c.filename, c.lineNumber, msg, c.text, c.pos)
}
