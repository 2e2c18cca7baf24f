// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
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

// Predefined system equates. The cpu defines are added in Parse.
var sysEquate = map[string]string{
	"LINENO": "0",
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Assembler is a single pass macro assembler for CHIP-8, using the
// conventional mnemonics (CLS, LD V0, 0x10, DRW V0, V1, 5, ...).
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]uint16   // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Count of macro expansions, for '@' label mangling.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}

	value, err = strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// number returns a value in [lo, hi].
func (asm *Assembler) number(word string, lo, hi int64) (value uint16, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v64 < lo || v64 > hi {
		err = ErrValueRange
		return
	}

	value = uint16(v64)
	return
}

// byteOf returns a byte operand. Negative values are two's complement.
func (asm *Assembler) byteOf(word string) (value uint8, err error) {
	v16, err := asm.number(word, -0x80, 0xff)
	value = uint8(v16)
	return
}

// address returns either an immediate 12 bit address, or the label to
// link it against.
func (asm *Assembler) address(word string) (nnn uint16, label string, err error) {
	nnn, err = asm.number(word, 0, ADDRESS_MASK)
	if err == nil || err == ErrValueRange {
		return
	}

	if !reLabel.MatchString(word) {
		return
	}

	label = word
	err = nil
	return
}

// register parses a Vx register name.
func register(word string) (x uint8, ok bool) {
	if len(word) != 2 || (word[0] != 'v' && word[0] != 'V') {
		return
	}

	v, err := strconv.ParseUint(word[1:], 16, 8)
	if err != nil {
		return
	}

	return uint8(v), true
}

// register returns the register named by word.
func (asm *Assembler) register(word string) (x uint8, err error) {
	x, ok := register(word)
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// argc checks the operand count.
func argc(args []string, lo, hi int) (err error) {
	switch {
	case len(args) < lo:
		err = ErrOpcodeMissing
	case len(args) > hi:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	err = nil
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
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

// splitWords splits a line on spaces and operand commas.
func splitWords(line string) []string {
	return strings.Fields(strings.ReplaceAll(line, ",", " "))
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
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
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

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
		if !reLabel.MatchString(label) {
			err = ErrParseExpression(label)
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint16, 16)
		}
		asm.Label[label] = asm.currentAddr()
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

		asm.expansions++
		mangle := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", mangle)
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

// currentAddr gets the load address of the next opcode.
func (asm *Assembler) currentAddr() uint16 {
	if len(asm.Opcode) == 0 {
		return PROGRAM_START
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + uint16(len(last.Data))
}

// Parse parses an input stream into a Program containing opcodes.
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
	asm.expansions = 0
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, _cpu_defines)
	maps.Copy(asm.Equate, asm.predefine)

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			slog.Debug("asm: line", "lineno", lineno, "text", text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

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

	if int(asm.currentAddr()) > PROGRAM_START+PROGRAM_SIZE {
		err = ErrRomTooLarge
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		word := binary.BigEndian.Uint16(op.Data[op.LinkOffset:])
		binary.BigEndian.PutUint16(op.Data[op.LinkOffset:], word|addr)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte
	var raw bool
	var label string
	var offset int

	// no-op
	if len(words) == 0 {
		return
	}

	defer func() {
		if err != nil || len(data) == 0 {
			return
		}
		opcode := Opcode{
			LineNo:     lineno,
			Addr:       asm.currentAddr(),
			Words:      words,
			Data:       data,
			Raw:        raw,
			LinkLabel:  label,
			LinkOffset: offset,
		}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	emit := func(code Code) {
		data = binary.BigEndian.AppendUint16(data, uint16(code))
	}

	args := words[1:]
	var x, y, n, nn uint8
	var nnn uint16

	switch strings.ToLower(words[0]) {
	case ".byte", "db":
		raw = true
		err = argc(args, 1, len(args))
		if err != nil {
			return
		}
		for _, arg := range args {
			nn, err = asm.byteOf(arg)
			if err != nil {
				return
			}
			data = append(data, nn)
		}
	case ".word", "dw":
		raw = true
		err = argc(args, 1, len(args))
		if err != nil {
			return
		}
		for _, arg := range args {
			var value uint16
			value, err = asm.number(arg, -0x8000, 0xffff)
			if err != nil && err != ErrValueRange && reLabel.MatchString(arg) && label == "" {
				label = arg
				offset = len(data)
				value, err = 0, nil
			}
			if err != nil {
				return
			}
			data = binary.BigEndian.AppendUint16(data, value)
		}
	case "cls":
		err = argc(args, 0, 0)
		emit(0x00e0)
	case "ret":
		err = argc(args, 0, 0)
		emit(0x00ee)
	case "jp":
		err = argc(args, 1, 2)
		if err != nil {
			return
		}
		family := FAMILY_JP
		if len(args) == 2 {
			if strings.ToLower(args[0]) != "v0" {
				err = ErrRegisterInvalid
				return
			}
			family = FAMILY_JP_V0
			args = args[1:]
		}
		nnn, label, err = asm.address(args[0])
		if err != nil {
			return
		}
		emit(MakeCodeNNN(family, nnn))
	case "call":
		err = argc(args, 1, 1)
		if err != nil {
			return
		}
		nnn, label, err = asm.address(args[0])
		if err != nil {
			return
		}
		emit(MakeCodeNNN(FAMILY_CALL, nnn))
	case "se", "sne":
		err = argc(args, 2, 2)
		if err != nil {
			return
		}
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		byteFamily, regFamily := FAMILY_SE_BYTE, FAMILY_SE_REG
		if strings.ToLower(words[0]) == "sne" {
			byteFamily, regFamily = FAMILY_SNE_BYTE, FAMILY_SNE_REG
		}
		if y, ok := register(args[1]); ok {
			emit(MakeCodeXYN(regFamily, x, y, 0))
			return
		}
		nn, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		emit(MakeCodeXNN(byteFamily, x, nn))
	case "ld":
		err = asm.parseLoad(args, &label, emit)
	case "add":
		err = argc(args, 2, 2)
		if err != nil {
			return
		}
		if strings.ToLower(args[0]) == "i" {
			x, err = asm.register(args[1])
			if err != nil {
				return
			}
			emit(MakeCodeXNN(FAMILY_MISC, x, 0x1e))
			return
		}
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		if y, ok := register(args[1]); ok {
			emit(MakeCodeXYN(FAMILY_ALU, x, y, 0x4))
			return
		}
		nn, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		emit(MakeCodeXNN(FAMILY_ADD_BYTE, x, nn))
	case "or", "and", "xor", "sub", "subn", "shr", "shl":
		suffix := aluMap[strings.ToLower(words[0])]
		lo := 2
		if suffix == 0x6 || suffix == 0xe {
			lo = 1
		}
		err = argc(args, lo, 2)
		if err != nil {
			return
		}
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		y = x
		if len(args) == 2 {
			y, err = asm.register(args[1])
			if err != nil {
				return
			}
		}
		emit(MakeCodeXYN(FAMILY_ALU, x, y, suffix))
	case "rnd":
		err = argc(args, 2, 2)
		if err != nil {
			return
		}
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		nn, err = asm.byteOf(args[1])
		if err != nil {
			return
		}
		emit(MakeCodeXNN(FAMILY_RND, x, nn))
	case "drw":
		err = argc(args, 3, 3)
		if err != nil {
			return
		}
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		y, err = asm.register(args[1])
		if err != nil {
			return
		}
		var v16 uint16
		v16, err = asm.number(args[2], 0, 0xf)
		if err != nil {
			return
		}
		n = uint8(v16)
		emit(MakeCodeXYN(FAMILY_DRW, x, y, n))
	case "skp", "sknp":
		err = argc(args, 1, 1)
		if err != nil {
			return
		}
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		nn = 0x9e
		if strings.ToLower(words[0]) == "sknp" {
			nn = 0xa1
		}
		emit(MakeCodeXNN(FAMILY_KEY, x, nn))
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}

// aluMap maps register-register ALU names to their 8XYN suffix.
var aluMap = map[string]uint8{
	"or":   0x1,
	"and":  0x2,
	"xor":  0x3,
	"sub":  0x5,
	"shr":  0x6,
	"subn": 0x7,
	"shl":  0xe,
}

// miscLoadMap maps 'LD <dst>, Vx' destinations to their FXNN suffix.
var miscLoadMap = map[string]uint8{
	"dt":  0x15,
	"st":  0x18,
	"f":   0x29,
	"b":   0x33,
	"[i]": 0x55,
}

// miscReadMap maps 'LD Vx, <src>' sources to their FXNN suffix.
var miscReadMap = map[string]uint8{
	"dt":  0x07,
	"k":   0x0a,
	"[i]": 0x65,
}

// parseLoad assembles the LD forms.
func (asm *Assembler) parseLoad(args []string, label *string, emit func(Code)) (err error) {
	err = argc(args, 2, 2)
	if err != nil {
		return
	}

	dst := strings.ToLower(args[0])
	src := strings.ToLower(args[1])

	if dst == "i" {
		var nnn uint16
		nnn, *label, err = asm.address(args[1])
		if err != nil {
			return
		}
		emit(MakeCodeNNN(FAMILY_LD_I, nnn))
		return
	}

	if nn, ok := miscLoadMap[dst]; ok {
		var x uint8
		x, err = asm.register(args[1])
		if err != nil {
			return
		}
		emit(MakeCodeXNN(FAMILY_MISC, x, nn))
		return
	}

	x, err := asm.register(args[0])
	if err != nil {
		return
	}

	if nn, ok := miscReadMap[src]; ok {
		emit(MakeCodeXNN(FAMILY_MISC, x, nn))
		return
	}

	if y, ok := register(src); ok {
		emit(MakeCodeXYN(FAMILY_ALU, x, y, 0x0))
		return
	}

	nn, err := asm.byteOf(args[1])
	if err != nil {
		return
	}
	emit(MakeCodeXNN(FAMILY_LD_BYTE, x, nn))

	return
}
