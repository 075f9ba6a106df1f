package gdbmi

import "fmt"

// Breakpoint mirrors the fields GDB/MI reports for a breakpoint tuple,
// adapted from ulrichSchreiner-gdbmi/breakpoint.go's Breakpoint struct and
// generalized to the async-notification-driven lifecycle spec.md §4.7
// describes instead of that file's request/response pattern.
type Breakpoint struct {
	Number     string
	Type       string
	Disposition string
	Enabled    bool
	Address    string
	Function   string
	Filename   string
	Fullname   string
	Line       int
	Condition  string
	Times      int
	Temporary  bool
}

// BreakpointController tracks the breakpoint set by consuming
// breakpoint-created/modified/deleted async notifications and issuing
// break-insert/delete/condition/enable/disable commands, per spec.md
// §4.7. Grounded on ulrichSchreiner-gdbmi/breakpoint.go for the MI verbs
// and sidkshatriya-dontbug/engine/breakpoints.go for the
// notification-driven bookkeeping pattern (a map keyed by id, updated in
// place on each notification rather than re-queried).
type BreakpointController struct {
	session *Session
	byID    map[string]*Breakpoint
}

func newBreakpointController(s *Session) *BreakpointController {
	return &BreakpointController{session: s, byID: make(map[string]*Breakpoint)}
}

func (c *BreakpointController) hasAny() bool {
	return len(c.byID) > 0
}

// Insert queues a break-insert for location ("file:line" or a function
// name). The breakpoint is added to the tracked set once the
// corresponding breakpoint-created notification arrives, not from the
// command's own result, matching how GDB/MI reports breakpoint creation
// twice (once in the ^done result, once as =breakpoint-created) and the
// notification is the canonical source spec.md designates.
func (c *BreakpointController) Insert(location string) error {
	cmd := NewCommand(BreakInsert, fmt.Sprintf(" -break-insert %s", location), CmdNone, nil)
	return c.session.driver.Enqueue(cmd)
}

// InsertTemporary queues a one-shot breakpoint ("-t"), used for
// run-to-cursor style operations.
func (c *BreakpointController) InsertTemporary(location string) error {
	cmd := NewCommand(BreakInsert, fmt.Sprintf(" -break-insert -t %s", location), CmdNone, nil)
	return c.session.driver.Enqueue(cmd)
}

// Delete queues a break-delete for the tracked breakpoint id.
func (c *BreakpointController) Delete(id string) error {
	cmd := NewCommand(BreakDelete, fmt.Sprintf(" -break-delete %s", id), CmdNone, nil)
	return c.session.driver.Enqueue(cmd)
}

// SetEnabled queues break-enable or break-disable for id.
func (c *BreakpointController) SetEnabled(id string, enabled bool) error {
	verb := "-break-enable"
	if !enabled {
		verb = "-break-disable"
	}
	cmd := NewCommand(BreakEnable, fmt.Sprintf(" %s %s", verb, id), CmdNone, nil)
	return c.session.driver.Enqueue(cmd)
}

// SetCondition queues break-condition for id.
func (c *BreakpointController) SetCondition(id, expr string) error {
	cmd := NewCommand(BreakCondition, fmt.Sprintf(" -break-condition %s %s", id, expr), CmdNone, nil)
	return c.session.driver.Enqueue(cmd)
}

// Get returns the tracked breakpoint by id, if present.
func (c *BreakpointController) Get(id string) (*Breakpoint, bool) {
	bp, ok := c.byID[id]
	return bp, ok
}

// handleNotification applies a breakpoint-created/modified/deleted async
// record to the tracked set.
func (c *BreakpointController) handleNotification(rec Record) {
	switch rec.AsyncClass {
	case NotifyBreakpointCreated, NotifyBreakpointModified:
		bkpt := rec.Field("bkpt")
		bp := parseBreakpoint(bkpt)
		c.byID[bp.Number] = bp
	case NotifyBreakpointDeleted:
		id := rec.Field("id").Literal()
		delete(c.byID, id)
	}
}

func parseBreakpoint(v Value) *Breakpoint {
	line := 0
	if l := v.Field("line"); l.Literal() != "" {
		fmt.Sscanf(l.Literal(), "%d", &line)
	}
	times := 0
	if t := v.Field("times"); t.Literal() != "" {
		fmt.Sscanf(t.Literal(), "%d", &times)
	}
	return &Breakpoint{
		Number:       v.Field("number").Literal(),
		Type:         v.Field("type").Literal(),
		Disposition:  v.Field("disp").Literal(),
		Enabled:      v.Field("enabled").Literal() == "y",
		Address:      v.Field("addr").Literal(),
		Function:     v.Field("func").Literal(),
		Filename:     v.Field("file").Literal(),
		Fullname:     v.Field("fullname").Literal(),
		Line:         line,
		Condition:    v.Field("cond").Literal(),
		Times:        times,
		Temporary:    v.Field("disp").Literal() == "del",
	}
}
