// Package filter is a modal panel for editing a filter tree through a
// sift store: navigate the tree, mutate it, and apply the result to the
// record store.
package filter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"sift"
	nt "sift/entity"
	"sift/message"
	"sift/style"
)

// Panel displays the filter tree, one node per row, indented by depth.
type Panel struct {
	store  *sift.Store
	schema nt.Schema
	fields []string

	rows   []row
	cursor int
	marked map[string]bool

	editing bool
	editBuf string

	width  int
	height int

	ctx    context.Context
	logger nt.Logger
}

type row struct {
	id    string
	depth int
	group bool
	label string
}

// NewPanel creates a panel over a store and the schema its fields follow.
func NewPanel(ctx context.Context, lgr nt.Logger, store *sift.Store, schema nt.Schema) Panel {

	fields := make([]string, 0, len(schema))
	for field := range schema {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	pnl := Panel{
		store:  store,
		schema: schema,
		fields: fields,
		marked: map[string]bool{},
		ctx:    ctx,
		logger: lgr,
	}
	return pnl.rebuild()
}

func (pnl Panel) Init() tea.Cmd {
	return nil
}

// Editing reports whether a value edit is in progress, in which case keys
// belong to the edit buffer.
func (pnl Panel) Editing() bool {
	return pnl.editing
}

func (pnl Panel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	switch msg := msg.(type) {

	case SizeMsg:
		pnl.width = msg.Width
		pnl.height = msg.Height

	case tea.KeyPressMsg:
		if pnl.editing {
			return pnl.handleEditKey(msg)
		}
		return pnl.handleKey(msg)
	}

	return pnl, nil
}

func (pnl Panel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {

	switch msg.String() {

	case "up":
		if pnl.cursor > 0 {
			pnl.cursor--
		}

	case "down":
		if pnl.cursor < len(pnl.rows)-1 {
			pnl.cursor++
		}

	case "a":
		pnl = pnl.addCondition()

	case "A":
		pnl = pnl.mutate(func() error {
			_, err := pnl.store.AddGroup(nt.And, pnl.targetGroupId())
			return err
		})

	case "f":
		pnl = pnl.cycleField()

	case "o":
		pnl = pnl.toggleOperator()

	case "left":
		pnl = pnl.cycleClauseOperator(-1)

	case "right":
		pnl = pnl.cycleClauseOperator(1)

	case "t":
		pnl = pnl.toggleBool()

	case "e":
		pnl = pnl.startEdit()

	case "m":
		pnl = pnl.toggleMark()

	case "g":
		pnl = pnl.groupMarked(nt.And)

	case "G":
		pnl = pnl.groupMarked(nt.Or)

	case "u":
		pnl = pnl.mutate(func() error {
			return pnl.store.UngroupFilter(pnl.selected().id)
		})

	case "d":
		pnl = pnl.mutate(func() error {
			return pnl.store.RemoveFilter(pnl.selected().id)
		})

	case "r":
		pnl.store.ResetFilter()
		pnl.marked = map[string]bool{}
		pnl = pnl.rebuild()

	case "p":
		return pnl, message.ApplyCmd(pnl.store.Snapshot())
	}

	return pnl, nil
}

func (pnl Panel) handleEditKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {

	switch msg.String() {

	case "enter":
		pnl = pnl.commitEdit()

	case "esc":
		pnl.editing = false
		pnl.editBuf = ""

	case "backspace":
		if len(pnl.editBuf) > 0 {
			pnl.editBuf = pnl.editBuf[:len(pnl.editBuf)-1]
		}

	default:
		key := msg.String()
		if len(key) == 1 {
			pnl.editBuf += key
		}
	}

	return pnl, nil
}

// mutate runs a store operation and refreshes the rows, logging rather
// than surfacing mutation errors; the tree is untouched on failure.
func (pnl Panel) mutate(op func() error) Panel {

	err := op()
	if err != nil {
		pnl.logger.Error(pnl.ctx, "filter mutation refused", err)
		return pnl
	}
	return pnl.rebuild()
}

func (pnl Panel) selected() row {

	if pnl.cursor < 0 || pnl.cursor >= len(pnl.rows) {
		return row{}
	}
	return pnl.rows[pnl.cursor]
}

// targetGroupId resolves where additions land: the selected group, or the
// selected condition's parent.
func (pnl Panel) targetGroupId() string {

	sel := pnl.selected()
	if sel.group {
		return sel.id
	}

	parentId, err := pnl.store.ParentOf(sel.id)
	if err != nil {
		return ""
	}
	return parentId
}

func (pnl Panel) addCondition() Panel {

	if len(pnl.fields) == 0 {
		return pnl
	}
	field := pnl.fields[0]

	return pnl.mutate(func() error {
		_, err := pnl.store.AddCondition(field, defaultValue(pnl.schema.KindOf(field)), pnl.targetGroupId())
		return err
	})
}

// cycleField rotates the selected condition through the schema fields,
// resetting its value for the new kind.
func (pnl Panel) cycleField() Panel {

	sel := pnl.selected()
	if sel.group {
		return pnl
	}

	cnd, ok := pnl.findCondition(sel.id)
	if !ok {
		return pnl
	}

	next := 0
	for i, field := range pnl.fields {
		if field == cnd.Field {
			next = (i + 1) % len(pnl.fields)
			break
		}
	}
	field := pnl.fields[next]

	parentId, err := pnl.store.ParentOf(sel.id)
	if err != nil {
		return pnl
	}

	return pnl.mutate(func() error {
		err := pnl.store.RemoveFilter(sel.id)
		if err != nil {
			return err
		}
		_, err = pnl.store.AddCondition(field, defaultValue(pnl.schema.KindOf(field)), parentId)
		return err
	})
}

func (pnl Panel) toggleOperator() Panel {

	sel := pnl.selected()
	if !sel.group {
		return pnl
	}

	grp, ok := pnl.findGroup(sel.id)
	if !ok {
		return pnl
	}

	op := nt.And
	if grp.Operator == nt.And {
		op = nt.Or
	}

	return pnl.mutate(func() error {
		return pnl.store.SetOperator(sel.id, op)
	})
}

func (pnl Panel) cycleClauseOperator(delta int) Panel {

	sel := pnl.selected()
	cnd, ok := pnl.findCondition(sel.id)
	if !ok {
		return pnl
	}

	cls, err := nt.DecodeClause(cnd.Value)
	if err != nil {
		return pnl
	}

	ops := nt.OperatorsFor(pnl.schema.KindOf(cnd.Field))
	if len(ops) == 0 {
		return pnl
	}

	at := 0
	for i, op := range ops {
		if op == cls.Operator {
			at = i
			break
		}
	}
	cls.Operator = ops[(at+delta+len(ops))%len(ops)]

	return pnl.mutate(func() error {
		return pnl.store.UpdateCondition(sel.id, cls)
	})
}

func (pnl Panel) toggleBool() Panel {

	sel := pnl.selected()
	cnd, ok := pnl.findCondition(sel.id)
	if !ok {
		return pnl
	}

	val, isBool := cnd.Value.(bool)
	if !isBool {
		return pnl
	}

	return pnl.mutate(func() error {
		return pnl.store.UpdateCondition(sel.id, !val)
	})
}

func (pnl Panel) startEdit() Panel {

	sel := pnl.selected()
	cnd, ok := pnl.findCondition(sel.id)
	if !ok {
		return pnl
	}

	cls, err := nt.DecodeClause(cnd.Value)
	if err != nil {
		return pnl
	}

	pnl.editing = true
	pnl.editBuf = fmt.Sprintf("%v", cls.Value)
	return pnl
}

func (pnl Panel) commitEdit() Panel {

	sel := pnl.selected()
	cnd, ok := pnl.findCondition(sel.id)
	if !ok {
		pnl.editing = false
		return pnl
	}

	cls, err := nt.DecodeClause(cnd.Value)
	if err != nil {
		pnl.editing = false
		return pnl
	}

	cls.Value = parseValue(pnl.editBuf, pnl.schema.KindOf(cnd.Field))
	pnl.editing = false
	pnl.editBuf = ""

	return pnl.mutate(func() error {
		return pnl.store.UpdateCondition(sel.id, cls)
	})
}

func (pnl Panel) toggleMark() Panel {

	sel := pnl.selected()
	if sel.id == pnl.store.RootID() {
		return pnl
	}
	if pnl.marked[sel.id] {
		delete(pnl.marked, sel.id)
	} else {
		pnl.marked[sel.id] = true
	}
	return pnl
}

// groupMarked wraps the marked nodes, in display order, in a new group.
func (pnl Panel) groupMarked(op nt.Operator) Panel {

	ids := []string{}
	for _, have := range pnl.rows {
		if pnl.marked[have.id] {
			ids = append(ids, have.id)
		}
	}
	if len(ids) == 0 {
		return pnl
	}

	pnl = pnl.mutate(func() error {
		_, err := pnl.store.GroupFilters(ids, op, "")
		return err
	})
	pnl.marked = map[string]bool{}
	return pnl
}

func (pnl Panel) findCondition(id string) (*nt.Condition, bool) {

	node, err := pnl.store.Find(id)
	if err != nil {
		return nil, false
	}
	cnd, ok := node.(*nt.Condition)
	return cnd, ok
}

func (pnl Panel) findGroup(id string) (*nt.Group, bool) {

	node, err := pnl.store.Find(id)
	if err != nil {
		return nil, false
	}
	grp, ok := node.(*nt.Group)
	return grp, ok
}

func (pnl Panel) rebuild() Panel {

	pnl.rows = flatten(pnl.store.Snapshot(), 0, nil)
	if pnl.cursor >= len(pnl.rows) {
		pnl.cursor = len(pnl.rows) - 1
	}
	if pnl.cursor < 0 {
		pnl.cursor = 0
	}

	// drop marks on nodes no longer present
	present := map[string]bool{}
	for _, have := range pnl.rows {
		present[have.id] = true
	}
	for id := range pnl.marked {
		if !present[id] {
			delete(pnl.marked, id)
		}
	}

	return pnl
}

func flatten(node nt.Expression, depth int, rows []row) []row {

	switch have := node.(type) {

	case *nt.Group:
		label := "ALL of"
		if have.Operator == nt.Or {
			label = "ANY of"
		}
		rows = append(rows, row{id: have.Id, depth: depth, group: true, label: label})
		for _, child := range have.Children {
			rows = flatten(child, depth+1, rows)
		}

	case *nt.Condition:
		rows = append(rows, row{id: have.Id, depth: depth, label: conditionLabel(have)})
	}

	return rows
}

func conditionLabel(cnd *nt.Condition) string {

	if val, isBool := cnd.Value.(bool); isBool {
		return fmt.Sprintf("%s is %v", cnd.Field, val)
	}

	cls, err := nt.DecodeClause(cnd.Value)
	if err != nil {
		return fmt.Sprintf("%s %v", cnd.Field, cnd.Value)
	}
	return fmt.Sprintf("%s %s %v", cnd.Field, cls.Operator, cls.Value)
}

func defaultValue(knd nt.Kind) any {

	if knd == nt.KindBoolean {
		return true
	}
	return nt.Clause{Operator: nt.OpEq, Value: ""}
}

func parseValue(buf string, knd nt.Kind) any {

	if knd != nt.KindNumber {
		return buf
	}

	num, err := strconv.ParseFloat(buf, 64)
	if err != nil {
		return buf
	}
	return num
}

// Render returns the dialog and its centered position, for callers
// composing their own canvas.
func (pnl Panel) Render() (dialog string, x, y int) {

	var content strings.Builder
	content.WriteString("Filter:\n")

	for i, have := range pnl.rows {

		prefix := "  "
		if i == pnl.cursor {
			prefix = "> "
		}

		mark := " "
		if pnl.marked[have.id] {
			mark = "*"
		}

		label := have.label
		if have.group {
			label = style.GroupStyle.Render(label)
		}
		if pnl.editing && i == pnl.cursor {
			label += " = " + pnl.editBuf + "_"
		}

		line := fmt.Sprintf("%s%s%s%s", prefix, mark, strings.Repeat("  ", have.depth), label)
		if i == pnl.cursor && !pnl.editing {
			line = style.HlRowStyle.Render(line)
		}

		content.WriteString(line + "\n")
	}

	helpText := "a: condition  A: group  m: mark  g/G: group marks  u: ungroup  d: delete  o: and/or  e: edit  p: apply"
	if pnl.editing {
		helpText = "enter: save  esc: cancel"
	}
	content.WriteString("\n" + style.MutedStyle.Render(helpText))

	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1, 2).
		Width(72)

	dialog = dialogStyle.Render(content.String())

	// Center the dialog
	if pnl.width > 0 && pnl.height > 0 {
		dialogHeight := strings.Count(dialog, "\n") + 1
		dialogWidth := 76

		y = (pnl.height - dialogHeight) / 2
		x = (pnl.width - dialogWidth) / 2

		if y < 0 {
			y = 0
		}
		if x < 0 {
			x = 0
		}
	}

	return
}

func (pnl Panel) View() tea.View {

	dialog, x, y := pnl.Render()

	dialogLayer := lipgloss.NewLayer("filter", dialog).
		X(x).
		Y(y)

	return tea.NewView(dialogLayer)
}
