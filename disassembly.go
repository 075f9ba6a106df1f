package gdbmi

import "fmt"

// DisassemblyLine is one instruction line from a data-disassemble result.
type DisassemblyLine struct {
	Address      string
	Function     string
	Offset       int
	Instruction  string
}

// DisassemblyController wraps -data-disassemble and the
// disassembly-flavor toggle, grounded on
// original_source/debuggers/gdb/disassemblewidget.cpp's flavor-switch
// action and spec.md §4.7's disassembly controller contract.
type DisassemblyController struct {
	session *Session
	flavor  string
}

func newDisassemblyController(s *Session) *DisassemblyController {
	return &DisassemblyController{session: s, flavor: s.ctx.DisassemblyFlavor}
}

// SetFlavor issues "gdb-set disassembly-flavor {att|intel}", exactly as
// disassemblewidget.cpp's flavor toggle action does.
func (c *DisassemblyController) SetFlavor(flavor string) error {
	c.flavor = flavor
	return c.session.driver.Enqueue(c.setFlavorCommand(flavor))
}

func (c *DisassemblyController) setFlavorCommand(flavor string) *Command {
	return NewCommand(GdbSet, fmt.Sprintf(" -gdb-set disassembly-flavor %s", flavor), CmdNone, nil)
}

// Disassemble requests the instructions in the address range [start,end),
// or the 200 bytes starting at $pc when start==end==0.
func (c *DisassemblyController) Disassemble(start, end uint64, handler func([]DisassemblyLine)) error {
	var text string
	if start == 0 && end == 0 {
		text = " -data-disassemble -s $pc -e \"$pc+200\" -- 0"
	} else {
		text = fmt.Sprintf(" -data-disassemble -s 0x%x -e 0x%x -- 0", start, end)
	}
	cmd := NewCommand(DataDisassemble, text, CmdNone, func(rec Record) {
		if rec.ResultClass == ResultError || handler == nil {
			return
		}
		asm := rec.Field("asm_insns")
		lines := make([]DisassemblyLine, 0, asm.Size())
		for i := 0; i < asm.Size(); i++ {
			lines = append(lines, parseDisassemblyLine(asm.At(i)))
		}
		handler(lines)
	})
	return c.session.driver.Enqueue(cmd)
}

func parseDisassemblyLine(v Value) DisassemblyLine {
	offset := 0
	fmt.Sscanf(v.Field("offset").Literal(), "%d", &offset)
	return DisassemblyLine{
		Address:     v.Field("address").Literal(),
		Function:    v.Field("func-name").Literal(),
		Offset:      offset,
		Instruction: v.Field("inst").Literal(),
	}
}
