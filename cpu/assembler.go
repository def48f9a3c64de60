// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":        "0",
	"PROGRAM_LIMIT": fmt.Sprintf("%#x", PROGRAM_LIMIT),
}

// Assembler is a single pass macro assembler for the CPU.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to opcode addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Count of macro expansions, for unique '@' labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the 16-bit value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil || v64 > 0xffff || v64 < -0x8000 {
		err = ErrParseNumber(word)
		return
	}

	// Negative values wrap to their 16-bit two's complement.
	value = uint16(v64)

	if invert {
		value = ^value
	}

	return
}

// argOf parses an instruction argument: a register, a [slot], or a value.
func (asm *Assembler) argOf(word string) (arg CodeArg, err error) {
	if len(word) > 2 && word[0] == '[' && word[len(word)-1] == ']' {
		inner := word[1 : len(word)-1]
		equate, ok := asm.Equate[inner]
		if ok {
			inner = equate
		}
		var index uint16
		index, err = asm.valueOf(inner)
		if err != nil {
			return
		}
		arg = ArgSlot(index)
		return
	}

	reg, ok := regMap[word]
	if ok {
		arg = ArgReg(reg)
		return
	}

	value, err := asm.valueOf(word)
	if err != nil {
		err = ErrParseValue(word)
		return
	}

	arg = ArgLit(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value16 uint16
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line into the words of an instruction.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		expansion := asm.expansions
		asm.expansions++

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, expansion))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + 1
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.expansions = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		for _, link := range op.Links {
			ip, ok := asm.Label[link.Label]
			if !ok {
				lineno, line = op.LineNo, strings.Join(op.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			// The instruction pointer advances after every jump,
			// so land just before the labeled instruction. A label at
			// 0 wraps to 0xffff until Program.Append relocates it.
			link.Code.Address = uint16(ip - 1)
		}
	}

	if len(asm.Opcode) > PROGRAM_LIMIT {
		err = ErrProgramFull
		return
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}
	for _, op := range prog.Opcodes {
		prog.Codes = append(prog.Codes, op.Code)
	}
	prog.scan()

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	var links []Link
	code, rest, err := asm.parseCode(words, &links)
	if err != nil {
		return
	}
	if len(rest) != 0 {
		err = ErrOpcodeExtraArgs
		return
	}

	opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: words, Code: code, Links: links}
	asm.Opcode = append(asm.Opcode, opcode)

	return
}

// parseArgs parses the n arguments following an opcode word.
func (asm *Assembler) parseArgs(words []string, n int) (args [2]CodeArg, rest []string, err error) {
	if len(words) < 1+n {
		err = ErrOpcodeValueMissing
		return
	}

	for i := range n {
		args[i], err = asm.argOf(words[1+i])
		if err != nil {
			return
		}
	}

	rest = words[1+n:]
	return
}

// parseCode parses one instruction from the start of words, returning
// the words that follow it. Label references are added to links.
func (asm *Assembler) parseCode(words []string, links *[]Link) (code *Code, rest []string, err error) {
	if len(words) == 0 {
		err = ErrOpcodeMissing
		return
	}

	code = &Code{}

	switch words[0] {
	case "add", "sub", "eq", "mov":
		code.Op = map[string]CodeOp{"add": OP_ADD, "sub": OP_SUB, "eq": OP_EQ, "mov": OP_MOV}[words[0]]
		code.Arg, rest, err = asm.parseArgs(words, 2)
		if err != nil {
			return
		}
		if code.Op == OP_MOV && code.Arg[1].Mode == ARG_LIT {
			err = ErrTargetInvalid
			return
		}
	case "func", "call":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		code.Op = OP_FUNC
		if words[0] == "call" {
			code.Op = OP_CALL
		}
		code.Name = words[1]
		rest = words[2:]
	case "return":
		code.Op = OP_RETURN
		rest = words[1:]
	case "exit":
		code.Op = OP_EXIT
		rest = words[1:]
	case "goto":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		code.Op = OP_GOTO
		address, nerr := asm.valueOf(words[1])
		if nerr != nil {
			// Resolved once all labels are known.
			*links = append(*links, Link{Code: code, Label: words[1]})
		}
		code.Address = address
		rest = words[2:]
	case "if":
		// if COND then CODE... else CODE...
		code.Op = OP_IF
		code.Arg, rest, err = asm.parseArgs(words, 1)
		if err != nil {
			return
		}
		if len(rest) == 0 || rest[0] != "then" {
			err = ErrOpcodeThen
			return
		}
		code.Then, rest, err = asm.parseCode(rest[1:], links)
		if err != nil {
			return
		}
		if len(rest) == 0 || rest[0] != "else" {
			err = ErrOpcodeElse
			return
		}
		code.Else, rest, err = asm.parseCode(rest[1:], links)
		if err != nil {
			return
		}
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
