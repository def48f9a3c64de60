package cpu

import (
	"errors"

	"github.com/ezrec/tinycpu/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrIpEmpty          = errors.New(f("ip empty"))
	ErrIpExit           = errors.New(f("ip exit"))
	ErrStackEmpty       = errors.New(f("stack empty"))
	ErrStackFull        = errors.New(f("stack full"))
	ErrMainMissing      = errors.New(f("main function missing"))
	ErrFrequencyInvalid = errors.New(f("frequency invalid"))
	ErrProgramFull      = errors.New(f("program full"))
	ErrConsumed         = errors.New(f("cpu already executed"))
	ErrMovDestination   = errors.New(f("mov destination invalid"))
	ErrOpcodeArg1       = errors.New(f("arg1"))
	ErrOpcodeArg2       = errors.New(f("arg2"))
	ErrOpcodeArgMode    = errors.New(f("argument mode invalid"))
	ErrOpcodeBranch     = errors.New(f("if branch missing"))
	ErrOpcodeInvalid    = errors.New(f("opcode invalid"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelFirst         = errors.New(f("label at address 0 cannot be a jump target"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeThen         = errors.New(f("if without then"))
	ErrOpcodeElse         = errors.New(f("if without else"))
	ErrTargetInvalid      = errors.New(f("target invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

type ErrUnknownRegister string

func (err ErrUnknownRegister) Error() string {
	return f("register %v unknown", string(err))
}

func (err ErrUnknownRegister) Is(target error) (ok bool) {
	_, ok = target.(ErrUnknownRegister)
	return
}

type ErrUnknownFunction string

func (err ErrUnknownFunction) Error() string {
	return f("function '%v' unknown", string(err))
}

func (err ErrUnknownFunction) Is(target error) (ok bool) {
	_, ok = target.(ErrUnknownFunction)
	return
}

type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode '%v'", Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value, slot, or register", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
