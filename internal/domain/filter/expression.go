package filter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker"
)

// RowVariable is the CEL variable bound to the row being evaluated.
const RowVariable = "row"

const (
	// MaxExpressionCost caps both the estimated and the actual cost of one
	// evaluation.
	MaxExpressionCost uint64 = 100_000

	// MaxExpressionLength is the longest accepted source, in code points.
	MaxExpressionLength = 1024

	// maxPrograms bounds the compiled program cache of one evaluator.
	maxPrograms = 256

	// assumedCollectionSize is the size the cost estimate assumes for row
	// values of unknown length (lists, maps and strings).
	assumedCollectionSize = 100

	evalTimeout = 100 * time.Millisecond
)

// rowSizeEstimator sizes row values for static cost estimation.
type rowSizeEstimator struct{}

func (rowSizeEstimator) EstimateSize(checker.AstNode) *checker.SizeEstimate {
	return &checker.SizeEstimate{Min: 0, Max: assumedCollectionSize}
}

func (rowSizeEstimator) EstimateCallCost(string, string, *checker.AstNode, []checker.AstNode) *checker.CallEstimate {
	return nil
}

// expressions compiles and caches CEL programs. Safe for concurrent use.
type expressions struct {
	once sync.Once
	env  *cel.Env
	err  error

	mu       sync.RWMutex
	programs map[string]cel.Program
}

func (e *expressions) environment() (*cel.Env, error) {
	e.once.Do(func() {
		e.env, e.err = cel.NewEnv(
			cel.Variable(RowVariable, cel.MapType(cel.StringType, cel.DynType)),
			cel.CrossTypeNumericComparisons(true),
			cel.ParserExpressionSizeLimit(MaxExpressionLength),
			cel.ParserRecursionLimit(32),
		)
	})
	return e.env, e.err
}

// compile returns a cached program for src, compiling it on first use.
// Expressions whose estimated cost exceeds MaxExpressionCost are rejected.
func (e *expressions) compile(src string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[src]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	env, err := e.environment()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, iss := env.Compile(src)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	if out := ast.OutputType().String(); out != "bool" && out != "dyn" {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", out)
	}

	est, err := env.EstimateCost(ast, rowSizeEstimator{})
	if err != nil {
		return nil, fmt.Errorf("estimate cost: %w", err)
	}
	if est.Max > MaxExpressionCost {
		return nil, fmt.Errorf("expression is too expensive (estimated cost %d, limit %d)", est.Max, MaxExpressionCost)
	}

	prg, err = env.Program(ast,
		cel.CostLimit(MaxExpressionCost),
		cel.InterruptCheckFrequency(100),
	)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.programs == nil {
		e.programs = make(map[string]cel.Program)
	}
	if len(e.programs) >= maxPrograms {
		// Evict an arbitrary entry; saved views recompile on their next use.
		for k := range e.programs {
			delete(e.programs, k)
			break
		}
	}
	e.programs[src] = prg
	e.mu.Unlock()

	return prg, nil
}

// eval runs src against row. Compile or runtime errors, exceeded cost or
// time limits and non-bool results yield false.
func (e *expressions) eval(src string, row Row) bool {
	prg, err := e.compile(src)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	out, _, err := prg.ContextEval(ctx, map[string]any{RowVariable: map[string]any(row)})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
