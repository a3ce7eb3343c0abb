package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lemonberrylabs/arith/pkg/types"
)

func TestRun(t *testing.T) {
	sheet := &Sheet{Expressions: []Entry{
		{Name: "a", Expr: "2 + 3 * 4"},
		{Name: "b", Expr: "1 / 0"},
		{Name: "c", Expr: "2 ^ 3 ^ 2"},
		{Name: "d", Expr: "(1 + 2"},
	}}

	results := Run(context.Background(), sheet, Options{Concurrency: 2})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	if results[0].Name != "a" || results[0].Err != nil || results[0].Value != 14 {
		t.Errorf("unexpected result a: %+v", results[0])
	}
	if !types.HasTag(results[1].Err, types.TagZeroDivisionError) {
		t.Errorf("expected division by zero for b, got %v", results[1].Err)
	}
	if results[2].Err != nil || results[2].Value != 512 {
		t.Errorf("unexpected result c: %+v", results[2])
	}
	if !types.HasTag(results[3].Err, types.TagParseError) {
		t.Errorf("expected parse error for d, got %v", results[3].Err)
	}
	if got := Failures(results); got != 2 {
		t.Errorf("Failures() = %d, want 2", got)
	}
}

func TestRunPreservesOrder(t *testing.T) {
	sheet := &Sheet{}
	for i := 0; i < 200; i++ {
		sheet.Expressions = append(sheet.Expressions, Entry{
			Name: fmt.Sprintf("e%d", i),
			Expr: fmt.Sprintf("%d * 2", i),
		})
	}

	results := Run(context.Background(), sheet, Options{})
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Name, r.Err)
		}
		if r.Value != float64(i*2) {
			t.Errorf("results[%d] = %v, want %d", i, r.Value, i*2)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sheet := &Sheet{Expressions: []Entry{{Name: "a", Expr: "1"}, {Name: "b", Expr: "2"}}}
	results := Run(ctx, sheet, Options{Concurrency: 1})
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", r.Name, r.Err)
		}
	}
}
