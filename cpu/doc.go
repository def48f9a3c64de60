// Package cpu implements a small virtual CPU and its assembler.
//
// The CPU consists of an instruction pointer, four 16-bit general-purpose
// registers (a-d), a result register (res) written by arithmetic and
// comparison instructions, and a call stack of frames holding each call's
// return address and local slots. Function entry points are found by
// scanning the program for function markers as it is loaded.
//
// The assembler provides a line-oriented assembly language for the
// instruction set, supporting macros, labels, equates, and compile-time
// expression evaluation.
package cpu
