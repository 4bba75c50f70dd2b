// Command renpyparse parses a single Ren'Py-style script file and prints
// its AST, its logical lines, or its block tree to standard output.
package main

import (
	"fmt"
	"os"

	"strings"

	"github.com/aledsdavies/renpyparse/pkgs/ast"
	"github.com/aledsdavies/renpyparse/pkgs/lexer"
	"github.com/aledsdavies/renpyparse/pkgs/parser"
	"github.com/spf13/cobra"
)

// Build-time variables, set via ldflags.
var (
	Version   string = "dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "renpyparse <script>",
	Short: "Parse a Ren'Py-style script and print its AST",
	Long: `renpyparse reads a single Ren'Py-style script file, runs it through the
line scanner, block grouper, and statement parser, and prints the resulting
AST. Non-fatal parse errors are printed to standard error; a fatal error
(tabs, unterminated quotes, indentation mismatch, or an unreadable file)
aborts with a non-zero exit code.`,
	Args: cobra.ExactArgs(1),
	RunE: parseCommand,
}

var tokensCmd = &cobra.Command{
	Use:   "tokens <script>",
	Short: "Print the script's logical lines (stage 1 only)",
	Args:  cobra.ExactArgs(1),
	RunE:  tokensCommand,
}

var blocksCmd = &cobra.Command{
	Use:   "blocks <script>",
	Short: "Print the script's block tree (stage 2 only)",
	Args:  cobra.ExactArgs(1),
	RunE:  blocksCommand,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("renpyparse %s\n", Version)
		fmt.Printf("Built: %s\n", BuildTime)
		fmt.Printf("Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(versionCmd)
}

func parseCommand(cmd *cobra.Command, args []string) error {
	path := args[0]

	nodes, errs, err := parser.ParseScenarioFromFile(path)
	if err != nil {
		return fmt.Errorf("fatal: %w", err)
	}

	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e)
	}

	fmt.Println(ast.Format(nodes))
	return nil
}

func tokensCommand(cmd *cobra.Command, args []string) error {
	lines, err := parser.ListLogicalLinesFromFile(args[0])
	if err != nil {
		return fmt.Errorf("fatal: %w", err)
	}
	for _, l := range lines {
		fmt.Printf("%4d | %s\n", l.LineNumber, l.Text)
	}
	return nil
}

func blocksCommand(cmd *cobra.Command, args []string) error {
	lines, err := parser.ListLogicalLinesFromFile(args[0])
	if err != nil {
		return fmt.Errorf("fatal: %w", err)
	}
	blocks, err := parser.GroupLogicalLines(lines)
	if err != nil {
		return fmt.Errorf("fatal: %w", err)
	}
	printBlocks(blocks, 0)
	return nil
}

func printBlocks(blocks []lexer.Block, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, b := range blocks {
		fmt.Printf("%s%4d | %s\n", indent, b.LineNumber, b.Text)
		printBlocks(b.Subblocks, depth+1)
	}
}
