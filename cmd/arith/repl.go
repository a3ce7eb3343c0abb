package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/arith/pkg/expr"
)

const (
	startMessage = "Enter an expression to evaluate or 'q' to quit"
	prompt       = ">>> "
	quitCommand  = "q"
)

func newREPLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runREPL reads one expression per line, of any length, until "q" or end
// of input. An
// empty line re-prompts; a failed expression prints its error and the loop
// continues.
func runREPL(in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, startMessage)

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimRight(line, "\r\n")
		switch line {
		case quitCommand:
			return nil
		case "":
			continue
		}

		result, err := expr.Evaluate(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprintln(out, formatResult(result))
	}
}
