package filter

import (
	"maps"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// EnvFunc writes the variables and per-record helpers for item into env.
// It must accept the zero value of T, which is used to type-check
// expressions at compile time.
type EnvFunc[T any] func(item T, env map[string]any)

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*compilerConfig)

type compilerConfig struct {
	cacheSize int
	helpers   map[string]any
}

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *compilerConfig) {
		c.cacheSize = size
	}
}

// WithHelpers adds functions available to every expression
func WithHelpers(funcs map[string]any) ExprCompilerOption {
	return func(c *compilerConfig) {
		maps.Copy(c.helpers, funcs)
	}
}

// ExprCompiler compiles expressions in the expr language against the
// variables an EnvFunc provides.
type ExprCompiler[T any] struct {
	env     EnvFunc[T]
	helpers map[string]any
	cache   *lruCache[*exprFilter[T]]
	envPool sync.Pool
}

// NewExprCompiler creates a compiler for records described by env.
func NewExprCompiler[T any](env EnvFunc[T], opts ...ExprCompilerOption) *ExprCompiler[T] {
	cfg := compilerConfig{helpers: defaultHelpers()}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &ExprCompiler[T]{
		env:     env,
		helpers: cfg.helpers,
	}
	if cfg.cacheSize > 0 {
		c.cache = newLRUCache[*exprFilter[T]](cfg.cacheSize)
	}
	c.envPool.New = func() any {
		return make(map[string]any, 32)
	}
	return c
}

// Compile compiles an expression into an executable filter. Unknown
// variables and non-boolean results are rejected here rather than at
// evaluation time.
func (c *ExprCompiler[T]) Compile(expression string) (CompiledFilter[T], error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression", Err: ErrEmptyExpression}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	var zero T
	typed := make(map[string]any, 32)
	c.fill(zero, typed)

	program, err := expr.Compile(expression, expr.Env(typed), expr.AsBool())
	if err != nil {
		return nil, &CompilationError{Expression: expression, Reason: "failed to compile expression", Err: err}
	}

	f := &exprFilter[T]{expression: expression, program: program, compiler: c}
	if c.cache != nil {
		c.cache.Put(expression, f)
	}
	return f, nil
}

// Clear removes all cached filters
func (c *ExprCompiler[T]) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *ExprCompiler[T]) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

func (c *ExprCompiler[T]) fill(item T, env map[string]any) {
	maps.Copy(env, c.helpers)
	c.env(item, env)
}

type exprFilter[T any] struct {
	expression string
	program    *vm.Program
	compiler   *ExprCompiler[T]
}

func (f *exprFilter[T]) Eval(item T) (bool, error) {
	env := f.compiler.envPool.Get().(map[string]any)
	defer func() {
		clear(env)
		f.compiler.envPool.Put(env)
	}()
	f.compiler.fill(item, env)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, Err: err}
	}
	return result.(bool), nil
}

func (f *exprFilter[T]) Match(item T) bool {
	ok, err := f.Eval(item)
	return err == nil && ok
}

func (f *exprFilter[T]) Expression() string {
	return f.expression
}

func defaultHelpers() map[string]any {
	return map[string]any{
		"icontains": func(s, substr string) bool {
			return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
		},
		"iequals": strings.EqualFold,
	}
}
