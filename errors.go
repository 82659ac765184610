package observe

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMisuse indicates a declarator or builder used outside a valid
	// declaration position.
	ErrMisuse = errors.New("declarator used outside a class member declaration")
	// ErrDuplicateAnnotation indicates the class already holds a record for
	// the property.
	ErrDuplicateAnnotation = errors.New("property already carries an annotation on this class")
	// ErrIllegalRedeclaration indicates a computed declaration over a property
	// that is already computed on the same class or an ancestor.
	ErrIllegalRedeclaration = errors.New("illegal computed redeclaration")
	// ErrInvalidAnnotationTarget indicates the annotated member is not an
	// accessor with a getter.
	ErrInvalidAnnotationTarget = errors.New("computed annotation may only be applied to a getter, optionally with a setter")
	// ErrPropertyNotFound indicates no own property or class member exists
	// for the key.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrReadOnly indicates a write to a property without a setter.
	ErrReadOnly = errors.New("property is read-only")
	// ErrNotConfigurable indicates an attempt to redefine a non-configurable
	// own property.
	ErrNotConfigurable = errors.New("property is not configurable")
	// ErrClassNameRequired indicates Define received an empty name.
	ErrClassNameRequired = errors.New("class name must be provided")
	// ErrDuplicateClass indicates Define received a name already registered.
	ErrDuplicateClass = errors.New("class names must be unique")
)

// AnnotationError carries the class and property involved in a failed
// declaration or binding.
type AnnotationError struct {
	Op    string
	Class string
	Key   string
	Err   error
}

func (e *AnnotationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("observe: %s %s: %v", e.Op, e.Property(), e.Err)
}

func (e *AnnotationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Property returns the qualified Class.key name.
func (e *AnnotationError) Property() string {
	if e == nil {
		return ""
	}
	return qualify(e.Class, e.Key)
}

func annotationError(op string, class *Class, key string, err error) error {
	return &AnnotationError{
		Op:    op,
		Class: class.Name(),
		Key:   key,
		Err:   err,
	}
}

func illegalRedeclaration(class *Class, key string, cause error) error {
	msg := fmt.Sprintf("cannot declare computed on %s, the property is already annotated as computed; use Override to redefine an inherited property", qualify(class.Name(), key))
	if cause != nil {
		return fmt.Errorf("%w: %s: %w", ErrIllegalRedeclaration, msg, cause)
	}
	return fmt.Errorf("%w: %s", ErrIllegalRedeclaration, msg)
}

func misuse(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMisuse, fmt.Sprintf(format, args...))
}

func qualify(class, key string) string {
	if class == "" {
		return key
	}
	return class + "." + key
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Scope  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("observe: %s evaluator %s scope=%s: %v", e.Engine, describeExpression(e.Expr), e.Scope, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "observe:") {
		return err
	}
	return fmt.Errorf("observe: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, scope string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Scope == "" {
			evalErr.Scope = scope
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Scope:  scope,
		Err:    err,
	}
}
