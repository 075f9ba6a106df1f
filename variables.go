package gdbmi

import "fmt"

// Variable mirrors a GDB/MI variable-object tuple, adapted from the value
// model ulrichSchreiner-gdbmi/parser.go builds generically into a typed
// shape scoped to variable objects specifically, per spec.md §4.7.
type Variable struct {
	Name        string
	Expression  string
	Value       string
	Type        string
	NumChildren int
	InScope     bool
}

// VariableController manages GDB variable objects ("var-create" et al.),
// and is the component spec.md's queue-invalidation rationalization
// (queue.go's removeVariableUpdates) specifically protects: once
// execution moves, any in-flight var-evaluate-expression/var-list-children
// query it issued is stale and is dropped before transmission.
type VariableController struct {
	session *Session
	byName  map[string]*Variable
	seq     int
}

func newVariableController(s *Session) *VariableController {
	return &VariableController{session: s, byName: make(map[string]*Variable)}
}

// CreateWatch creates a new floating-scope variable object for expr and
// requests its formatted value, delivering updates through Update.
func (c *VariableController) CreateWatch(expr string) error {
	c.seq++
	name := fmt.Sprintf("watch%d", c.seq)
	cmd := NewCommand(VarEvaluateExpression, fmt.Sprintf(" -var-create %s * %s", name, expr), CmdNone, func(rec Record) {
		if rec.ResultClass == ResultError {
			c.session.sink.ShowMessage("failed to watch " + expr + ": " + rec.Field("msg").Literal())
			return
		}
		c.byName[name] = &Variable{
			Name:        name,
			Expression:  expr,
			Value:       rec.Field("value").Literal(),
			Type:        rec.Field("type").Literal(),
			NumChildren: atoiOr0(rec.Field("numchild").Literal()),
			InScope:     true,
		}
	})
	return c.session.driver.Enqueue(cmd)
}

// ListChildren requests the children of a variable object, e.g. to expand
// a struct or array in a tree view.
func (c *VariableController) ListChildren(name string, handler func([]Variable)) error {
	cmd := NewCommand(VarListChildren, fmt.Sprintf(" -var-list-children --all-values %s", name), CmdNone, func(rec Record) {
		if rec.ResultClass == ResultError || handler == nil {
			return
		}
		children := rec.Field("children")
		out := make([]Variable, 0, children.Size())
		for i := 0; i < children.Size(); i++ {
			child := children.At(i).Field("child")
			out = append(out, Variable{
				Name:        child.Field("name").Literal(),
				Value:       child.Field("value").Literal(),
				Type:        child.Field("type").Literal(),
				NumChildren: atoiOr0(child.Field("numchild").Literal()),
				InScope:     true,
			})
		}
		handler(out)
	})
	return c.session.driver.Enqueue(cmd)
}

// Update refreshes every tracked variable object's value, marking any
// that leave scope. This is the command range queue.go's
// removeVariableUpdates exists to invalidate if execution moves before
// it's transmitted.
func (c *VariableController) Update() error {
	cmd := NewCommand(VarUpdate, " -var-update --all-values *", CmdNone, func(rec Record) {
		if rec.ResultClass == ResultError {
			return
		}
		changes := rec.Field("changelist")
		for i := 0; i < changes.Size(); i++ {
			ch := changes.At(i)
			name := ch.Field("name").Literal()
			v, ok := c.byName[name]
			if !ok {
				continue
			}
			if ch.Field("in_scope").Literal() == "false" {
				v.InScope = false
				continue
			}
			v.Value = ch.Field("value").Literal()
			v.InScope = true
		}
	})
	return c.session.driver.Enqueue(cmd)
}

// Delete removes a tracked variable object both locally and in gdb.
func (c *VariableController) Delete(name string) error {
	delete(c.byName, name)
	cmd := NewCommand(VarEvaluateExpression, fmt.Sprintf(" -var-delete %s", name), CmdNone, nil)
	return c.session.driver.Enqueue(cmd)
}

func atoiOr0(s string) int {
	n := 0
	fmt.Sscanf(s, "%d", &n)
	return n
}
