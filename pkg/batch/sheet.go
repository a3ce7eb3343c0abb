// Package batch loads expression sheets (YAML or JSON documents listing
// named expressions) and evaluates them.
package batch

// Sheet is a named list of expressions.
type Sheet struct {
	Name        string
	Description string
	Expressions []Entry
}

// Entry is a single named expression in a sheet.
type Entry struct {
	Name string
	Expr string
	Line int // source line of the entry, for error messages
}
