package lexer

import (
	"regexp"
	"strings"

	"github.com/aledsdavies/renpyparse/pkgs/perr"
)

// LogicalLine is one script statement's worth of text, after joining
// bracket- and backslash-continued physical lines and stripping comments.
// Leading indentation is preserved; embedded newlines from backslash
// continuation are preserved; there is no trailing physical newline.
type LogicalLine struct {
	Filename   string
	LineNumber int // 1-based, the first physical line of this logical line
	Text       string
}

var blankLine = regexp.MustCompile(`^\s*$`)

// Scan splits text into logical lines. It normalises line endings, strips a
// leading BOM, and appends a terminator sentinel before scanning character
// by character with a paren-depth counter, matching the quoting, comment,
// and continuation rules spec'd for the line scanner.
func Scan(text, filename string) ([]LogicalLine, error) {
	filename = perr.ElideFilename(filename)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text += "\n\n"

	chars := []rune(text)
	pos := 0
	if len(chars) > 0 && chars[0] == 0xFEFF {
		pos = 1
	}

	number := 1
	var lines []LogicalLine

	for pos < len(chars) {
		startNumber := number
		var line strings.Builder
		parenDepth := 0

		for pos < len(chars) {
			c := chars[pos]

			if c == '\t' {
				return nil, perr.New(perr.LexicalError, filename, number,
					"Tab characters are not allowed")
			}

			if c == '\n' {
				number++
			}

			if c == '\n' && parenDepth == 0 {
				if !blankLine.MatchString(line.String()) {
					lines = append(lines, LogicalLine{
						Filename:   filename,
						LineNumber: startNumber,
						Text:       line.String(),
					})
				}
				pos++
				break
			}

			// Backslash-newline continuation (only outside strings/brackets;
			// the string branch below handles its own backslash escapes).
			if c == '\\' && pos+1 < len(chars) && chars[pos+1] == '\n' {
				pos += 2
				number++
				line.WriteByte('\n')
				continue
			}

			switch c {
			case '(', '[', '{':
				parenDepth++
			case ')', ']', '}':
				if parenDepth > 0 {
					parenDepth--
				}
			}

			// Comment: discard to end of physical line.
			if c == '#' {
				for pos < len(chars) && chars[pos] != '\n' {
					pos++
				}
				continue
			}

			// Quoted string: copy verbatim (with escapes) up to the matching delimiter.
			if c == '"' || c == '\'' || c == '`' {
				delim := c
				line.WriteRune(c)
				pos++

				escape := false
				for pos < len(chars) {
					c := chars[pos]
					if c == '\n' {
						number++
					}

					if escape {
						escape = false
						line.WriteRune(c)
						pos++
						continue
					}

					if c == delim {
						line.WriteRune(c)
						pos++
						break
					}

					if c == '\\' {
						escape = true
					}

					line.WriteRune(c)
					pos++
				}
				continue
			}

			line.WriteRune(c)
			pos++
		}

		if pos >= len(chars) && line.Len() != 0 {
			return nil, perr.New(perr.LexicalError, filename, startNumber,
				"is not terminated with a newline (check quotes and parenthesis)")
		}
	}

	return lines, nil
}
