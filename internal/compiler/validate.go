package compiler

import (
	"fmt"

	"github.com/roach88/dexmatch/internal/ir"
)

// Program lint codes (E120-E129)
const (
	ErrFinalSuperclass    = "E120" // class extends a final class
	ErrAbstractWithCode   = "E121" // abstract or native method has code
	ErrInterfaceFlags     = "E122" // interface is not abstract
	ErrConcreteNoCode     = "E123" // concrete program method has no code
	ErrAbstractInConcrete = "E124" // abstract method in a non-abstract class
)

// ValidationError represents a structural problem in a compiled program.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateProgram checks access-flag consistency of every non-external
// class in reg. Returns all errors found (does not fail-fast).
func ValidateProgram(reg *ir.Registry) []ValidationError {
	var errs []ValidationError
	for _, cls := range reg.Classes() {
		if cls.External {
			continue
		}
		errs = append(errs, validateClass(reg, cls)...)
	}
	return errs
}

func validateClass(reg *ir.Registry, cls *ir.Class) []ValidationError {
	var errs []ValidationError
	name := cls.Name()

	if super := reg.TypeClass(cls.Super); super != nil && super.Flags.Has(ir.AccFinal) {
		errs = append(errs, ValidationError{
			Field:   name + ".super",
			Message: fmt.Sprintf("extends final class %s", super.Name()),
			Code:    ErrFinalSuperclass,
		})
	}
	if cls.Flags.Has(ir.AccInterface) && !cls.Flags.Has(ir.AccAbstract) {
		errs = append(errs, ValidationError{
			Field:   name + ".access",
			Message: "interface must be abstract",
			Code:    ErrInterfaceFlags,
		})
	}

	methods := append(append([]*ir.Method{}, cls.DMethods...), cls.VMethods...)
	for _, m := range methods {
		bodyless := m.Flags.Has(ir.AccAbstract) || m.Flags.Has(ir.AccNative)
		switch {
		case bodyless && m.Code != nil:
			errs = append(errs, ValidationError{
				Field:   m.FullName(),
				Message: "abstract or native method has code",
				Code:    ErrAbstractWithCode,
			})
		case !bodyless && m.Code == nil && cls.ClassData:
			errs = append(errs, ValidationError{
				Field:   m.FullName(),
				Message: "concrete method has no code",
				Code:    ErrConcreteNoCode,
			})
		}
		if m.Flags.Has(ir.AccAbstract) && !cls.Flags.Has(ir.AccAbstract) {
			errs = append(errs, ValidationError{
				Field:   m.FullName(),
				Message: "abstract method in non-abstract class",
				Code:    ErrAbstractInConcrete,
			})
		}
	}
	return errs
}
