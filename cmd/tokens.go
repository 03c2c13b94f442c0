package cmd

import (
	"fmt"
	"os"

	"luadoxyxml/pkg/lexer"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the token stream of a Lua file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}

		comments, _ := cmd.Flags().GetBool("comments")
		tokenizer := lexer.NewTokenizer(string(content))
		if !comments {
			tokenizer.SetChannelMask(lexer.ChannelMain)
		}

		for _, token := range tokenizer.Tokenize() {
			if token.Kind == lexer.TokenError {
				return lexer.ErrorFromToken(filename, token)
			}
			printToken(token)
		}
		return nil
	},
}

func init() {
	tokensCmd.Flags().BoolP("comments", "C", false, "Include structured comment tokens")
}

func printToken(token lexer.Token) {
	fmt.Printf("%4d:%-3d %-16s", token.Pos.Line, token.Pos.Col, token.Kind)
	switch {
	case token.Kind == lexer.TokenNumber:
		fmt.Printf(" %g", token.Number)
	case token.Kind.IsDoxyComment():
		if token.Retroactive {
			fmt.Printf(" <")
		}
		fmt.Printf(" %q", token.Value)
	case token.Value != "":
		fmt.Printf(" %q", token.Value)
	}
	fmt.Println()
}
