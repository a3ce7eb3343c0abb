package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/arith/pkg/batch"
	"github.com/lemonberrylabs/arith/pkg/expr"
	"github.com/lemonberrylabs/arith/pkg/types"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval EXPRESSION...",
		Short: "Evaluate each argument and print one result per line",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runEval,
	}
	cmd.Flags().Bool("tree", false, "Print the parenthesised expression tree before each result")
	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	showTree, _ := cmd.Flags().GetBool("tree")
	out := cmd.OutOrStdout()

	failed := 0
	for _, arg := range args {
		node, err := expr.Parse(arg)
		var result float64
		if err == nil {
			if showTree {
				fmt.Fprintf(out, "%s : ", node)
			}
			result, err = expr.EvaluateNode(node)
		}
		if err != nil {
			fmt.Fprintln(out, &types.EvaluationError{Input: arg, Cause: err})
			failed++
			continue
		}
		fmt.Fprintln(out, formatResult(result))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d expressions failed", failed, len(args))
	}
	return nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Evaluate an expression sheet (YAML or JSON)",
		Args:  cobra.ExactArgs(1),
		RunE:  runSheet,
	}
	cmd.Flags().Int("concurrency", 0, "Maximum expressions evaluated at once (default GOMAXPROCS)")
	return cmd
}

func runSheet(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading sheet: %w", err)
	}
	sheet, err := batch.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Debug().Str("file", args[0]).Int("expressions", len(sheet.Expressions)).Msg("running sheet")
	results := batch.Run(ctx, sheet, batch.Options{Concurrency: concurrency})

	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "%s = %v\n", r.Name, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s = %s\n", r.Name, formatResult(r.Value))
	}

	if n := batch.Failures(results); n > 0 {
		return fmt.Errorf("%d of %d expressions failed", n, len(results))
	}
	return nil
}
