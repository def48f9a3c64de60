package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func parse(t *testing.T, program []string) (prog *Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(strings.Join(program, "\n")))
}

func codesOf(prog *Program) (codes []Code) {
	for _, code := range prog.Codes {
		codes = append(codes, *code)
	}
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Equal(0, prog.Len())

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0xffff", asm.Equate["PROGRAM_LIMIT"])
}

func TestAssemblerOpcodes(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"func main",
		"add a 1",
		"sub [3] b",
		"mov res [0]",
		"eq c 0x10",
		"call helper",
		"goto 12",
		"if d then exit else return",
		"return",
		"exit",
	}

	prog, err := parse(t, program)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Code{
		MakeCodeFunc("main"),
		MakeCodeAdd(ArgReg(REG_A), ArgLit(1)),
		MakeCodeSub(ArgSlot(3), ArgReg(REG_B)),
		MakeCodeMov(ArgReg(REG_RES), ArgSlot(0)),
		MakeCodeEq(ArgReg(REG_C), ArgLit(0x10)),
		MakeCodeCall("helper"),
		MakeCodeGoto(12),
		MakeCodeIf(ArgReg(REG_D), MakeCodeExit(), MakeCodeReturn()),
		MakeCodeReturn(),
		MakeCodeExit(),
	}

	assert.Equal(expected, codesOf(prog))

	for n, op := range prog.Opcodes {
		assert.Equal(n+1, op.LineNo)
		assert.Equal(n, op.Ip)
		assert.Empty(op.Links)
	}

	ip, ok := prog.Function("main")
	assert.True(ok)
	assert.Equal(uint16(0), ip)
}

func TestAssemblerRoundTrip(t *testing.T) {
	assert := assert.New(t)

	codes := []Code{
		MakeCodeFunc("main"),
		MakeCodeAdd(ArgSlot(0), ArgLit(0xffff)),
		MakeCodeMov(ArgLit(7), ArgReg(REG_RES)),
		MakeCodeIf(ArgSlot(1),
			MakeCodeIf(ArgReg(REG_A), MakeCodeCall("f"), MakeCodeGoto(3)),
			MakeCodeEq(ArgReg(REG_B), ArgReg(REG_C))),
	}

	var program []string
	for _, code := range codes {
		program = append(program, code.String())
	}

	assert.Equal("add [0] 65535", program[1])
	assert.Equal("if [1] then if a then call f else goto 3 else eq b c", program[3])

	prog, err := parse(t, program)
	assert.NoError(err)
	assert.Equal(codes, codesOf(prog))
}

func TestAssemblerValues(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"add 0x10 0b101",
		"add 010 -1",
		"add ~0 'A'",
		"add '\\n' 65535",
		"add $(3 * 7) $(0x100 >> 4)",
	}

	prog, err := parse(t, program)
	assert.NoError(err)

	expected := []Code{
		MakeCodeAdd(ArgLit(0x10), ArgLit(5)),
		MakeCodeAdd(ArgLit(8), ArgLit(0xffff)),
		MakeCodeAdd(ArgLit(0xffff), ArgLit('A')),
		MakeCodeAdd(ArgLit('\n'), ArgLit(0xffff)),
		MakeCodeAdd(ArgLit(21), ArgLit(16)),
	}

	assert.Equal(expected, codesOf(prog))
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "0x10")

	program := []string{
		".equ SLOT 2",
		".equ DOUBLE $(BASE * 2)",
		"mov BASE [SLOT]",
		"add DOUBLE $(LINENO)",
		".equ TOP $(DOUBLE + SLOT)",
		"eq TOP a",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	expected := []Code{
		MakeCodeMov(ArgLit(0x10), ArgSlot(2)),
		MakeCodeAdd(ArgLit(0x20), ArgLit(4)),
		MakeCodeEq(ArgLit(0x22), ArgReg(REG_A)),
	}

	assert.Equal(expected, codesOf(prog))
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".macro INC rn",
		"add rn 1",
		"mov res rn",
		".endm",
		".macro LOOP n",
		"@top: INC a",
		"eq a n",
		"if res then exit else goto @top",
		".endm",
		"func main",
		"INC b",
		"LOOP 3",
	}

	prog, err := parse(t, program)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Code{
		MakeCodeFunc("main"),
		MakeCodeAdd(ArgReg(REG_B), ArgLit(1)),
		MakeCodeMov(ArgReg(REG_RES), ArgReg(REG_B)),
		MakeCodeAdd(ArgReg(REG_A), ArgLit(1)),
		MakeCodeMov(ArgReg(REG_RES), ArgReg(REG_A)),
		MakeCodeEq(ArgReg(REG_A), ArgLit(3)),
		MakeCodeIf(ArgReg(REG_RES), MakeCodeExit(), MakeCodeGoto(2)),
	}

	assert.Equal(expected, codesOf(prog))
	assert.Equal(2, prog.Opcodes[1].LineNo)
	assert.Equal(2, prog.Opcodes[3].LineNo)
	assert.Equal(7, prog.Opcodes[5].LineNo)
	assert.Contains(prog.Opcodes[6].Words, "LOOP_1_top")
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"func main",
		"goto skip",
		"exit",
		"skip: back:",
		"add a 1",
		"if res then goto back else goto end",
		"end:",
	}

	prog, err := parse(t, program)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	// Label jumps land one before the label, as the pointer advances after each jump.
	expected := []Code{
		MakeCodeFunc("main"),
		MakeCodeGoto(2),
		MakeCodeExit(),
		MakeCodeAdd(ArgReg(REG_A), ArgLit(1)),
		MakeCodeIf(ArgReg(REG_RES), MakeCodeGoto(2), MakeCodeGoto(4)),
	}

	assert.Equal(expected, codesOf(prog))
	assert.Equal(1, len(prog.Opcodes[1].Links))
	assert.Equal(2, len(prog.Opcodes[4].Links))
}

func TestAssemblerWhitespace(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"func\tmain",
		"add\ta  1",
		"  if\td then exit\telse return  ",
		"\t.equ\tTEN 10",
		"top:\teq a TEN",
	}

	prog, err := parse(t, program)
	assert.NoError(err)

	expected := []Code{
		MakeCodeFunc("main"),
		MakeCodeAdd(ArgReg(REG_A), ArgLit(1)),
		MakeCodeIf(ArgReg(REG_D), MakeCodeExit(), MakeCodeReturn()),
		MakeCodeEq(ArgReg(REG_A), ArgLit(10)),
	}

	assert.Equal(expected, codesOf(prog))
}

func TestAssemblerLabelFirst(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"top:",
		"add a 1",
		"goto top",
	}

	// Not an error until it is known where the program is loaded.
	prog, err := parse(t, program)
	assert.NoError(err)
	assert.Equal(MakeCodeGoto(0xffff), *prog.Codes[1])

	empty := &Program{}
	err = empty.Append(prog)
	assert.ErrorIs(err, ErrLabelFirst)
	assert.Equal(0, empty.Len())

	var syntax *ErrSyntax
	if assert.True(errors.As(err, &syntax)) {
		assert.Equal(3, syntax.LineNo)
		assert.Equal("goto top", syntax.Line)
	}
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name    string
		program []string
		lineno  int
		err     error
	}{
		{"unknown", []string{"func main", "jump 3"}, 2, ErrInstructionInvalid},
		{"extra", []string{"return 3"}, 1, ErrOpcodeExtraArgs},
		{"missing_arg", []string{"add a"}, 1, ErrOpcodeValueMissing},
		{"missing_name", []string{"call"}, 1, ErrOpcodeValueMissing},
		{"mov_literal", []string{"mov a 3"}, 1, ErrTargetInvalid},
		{"no_then", []string{"if a exit else exit"}, 1, ErrOpcodeThen},
		{"no_else", []string{"if a then exit"}, 1, ErrOpcodeElse},
		{"empty_branch", []string{"if a then"}, 1, ErrOpcodeMissing},
		{"label_missing", []string{"func main", "goto nowhere", "exit"}, 2, ErrLabelMissing("nowhere")},
		{"label_dup", []string{"x: exit", "x: exit"}, 2, ErrLabelDuplicate},
		{"equ_syntax", []string{".equ X"}, 1, ErrEquateSyntax},
		{"equ_dup", []string{".equ X 1", ".equ X 2"}, 2, ErrEquateDuplicate},
		{"macro_lonely", []string{".macro M", "exit"}, 2, ErrMacroLonely},
		{"endm_lonely", []string{".endm"}, 1, ErrMacroLonelyEndm},
		{"macro_nest", []string{".macro M", ".macro N"}, 2, ErrMacroNesting},
		{"macro_dup", []string{".macro M", ".endm", ".macro M"}, 3, ErrMacroDuplicate},
		{"macro_args", []string{".macro M a", ".endm", "M"}, 3, ErrMacroSyntax},
		{"number", []string{"add 0x10000 1"}, 1, ErrParseValue("0x10000")},
		{"slot", []string{"add [x] 1"}, 1, ErrParseNumber("x")},
	}

	for _, entry := range table {
		_, err := parse(t, entry.program)
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}
}

func TestAssemblerMacroError(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".macro BAD",
		"add a",
		".endm",
		"BAD",
	}

	_, err := parse(t, program)
	assert.ErrorIs(err, ErrOpcodeValueMissing)

	var macro *ErrMacro
	assert.True(errors.As(err, &macro))
	assert.Equal("BAD", macro.Macro)
	assert.Equal(2, macro.Line)
}

func TestAssemblerExpressionError(t *testing.T) {
	assert := assert.New(t)

	_, err := parse(t, []string{"add $(1 +) 1"})
	assert.Error(err)

	_, err = parse(t, []string{`add $("text") 1`})
	assert.ErrorIs(err, ErrParseExpression(`"text"`))
}
