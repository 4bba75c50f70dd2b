package lexer

import (
	"github.com/aledsdavies/renpyparse/pkgs/perr"
)

// Block is a logical line together with its strictly-more-indented
// descendants. Text has its leading indentation stripped; Subblocks
// preserves source order.
type Block struct {
	Filename   string
	LineNumber int
	Text       string
	Subblocks  []Block
}

// Group turns a flat LogicalLine sequence into a tree of Blocks based on
// leading-space indentation. Every sibling group must share exactly one
// depth; any deviation that is neither a deeper child nor a shallower pop
// is an indentation mismatch.
func Group(lines []LogicalLine) ([]Block, error) {
	blocks, _, err := groupFrom(lines, 0, 0)
	return blocks, err
}

// depthSplit counts leading ASCII spaces and returns the remainder.
func depthSplit(text string) (int, string) {
	depth := 0
	for depth < len(text) && text[depth] == ' ' {
		depth++
	}
	return depth, text[depth:]
}

func groupFrom(lines []LogicalLine, start, minDepth int) ([]Block, int, error) {
	var out []Block
	i := start
	depth := -1

	for i < len(lines) {
		line := lines[i]
		lineDepth, rest := depthSplit(line.Text)

		if lineDepth < minDepth {
			break
		}

		if depth == -1 {
			depth = lineDepth
		}

		if depth != lineDepth {
			return nil, i, perr.New(perr.IndentationError, line.Filename, line.LineNumber,
				"indentation mismatch")
		}

		i++

		subblocks, next, err := groupFrom(lines, i, lineDepth+1)
		if err != nil {
			return nil, i, err
		}
		i = next

		out = append(out, Block{
			Filename:   line.Filename,
			LineNumber: line.LineNumber,
			Text:       rest,
			Subblocks:  subblocks,
		})
	}

	return out, i, nil
}
