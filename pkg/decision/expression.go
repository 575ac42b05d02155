package decision

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// evaluateExpression compiles and runs an expr-lang program against the
// analyze output. The program must evaluate to a boolean.
func (e *Engine) evaluateExpression(expression string, data map[string]any) (bool, error) {
	program, err := compile(expression)
	if err != nil {
		return false, err
	}

	output, err := vm.Run(program, data)
	if err != nil {
		return false, fmt.Errorf("expression evaluation failed: %w", err)
	}

	passed, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("expression must evaluate to a boolean, got %T", output)
	}

	return passed, nil
}

func (e *Engine) validateExpression(expression string) error {
	_, err := compile(expression)

	return err
}

func compile(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}

	return program, nil
}
