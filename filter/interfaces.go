package filter

import "context"

// Filter selects records of type T.
type Filter[T any] interface {
	// Match reports whether item satisfies the filter. Items the expression
	// cannot be evaluated against do not match.
	Match(item T) bool
}

// CompiledFilter is a filter expression ready for evaluation. Compiled
// filters are safe for concurrent use.
type CompiledFilter[T any] interface {
	Filter[T]

	// Eval evaluates the expression against item and returns any runtime error.
	Eval(item T) (bool, error)

	// Expression returns the source expression
	Expression() string
}

// Compiler compiles filter expressions for records of type T.
type Compiler[T any] interface {
	Compile(expression string) (CompiledFilter[T], error)
}

// Evaluator applies a filter to a list of records.
type Evaluator[T any] interface {
	Evaluate(ctx context.Context, filter CompiledFilter[T], items []T) ([]T, error)
}
