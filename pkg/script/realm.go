package script

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/sneedgroup-holder/wink-browser/pkg/diag"
	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
)

// Mutator is the write path scripts are confined to. Every mutating
// DOM call goes through it; the pipeline's coordinator implements it
// and batches the resulting invalidation.
type Mutator interface {
	InsertNode(parent, child, before *dom.Node) error
	RemoveNode(n *dom.Node) error
	MoveNode(n, newParent, before *dom.Node) error
	SetAttribute(n *dom.Node, name, value string) error
	SetText(n *dom.Node, text string) error
}

// DefaultTaskBudget bounds a single script task before the watchdog
// interrupts it.
const DefaultTaskBudget = time.Second

const handleProp = "__winkHandle"

// slot is one handle table entry. Removing a node from the document
// tombstones its slot; the generation check catches any wrapper that
// survived in JS.
type slot struct {
	node    *dom.Node
	gen     uint32
	live    bool
	wrapper *goja.Object
}

// Realm is the script side of one document: a goja runtime, the
// handle table mapping JS wrappers to DOM nodes, and the task queue.
// A realm lives and dies with its document.
type Realm struct {
	vm    *goja.Runtime
	doc   *dom.Document
	mut   Mutator
	sink  diag.Sink
	queue *TaskQueue

	slots  []slot
	byNode map[dom.NodeID]int

	listeners map[int]map[string][]goja.Callable

	// TaskBudget is the watchdog limit per task.
	TaskBudget time.Duration

	// AfterTask runs after every task, caught or not; the pipeline
	// hooks its flush here.
	AfterTask func()
}

func NewRealm(doc *dom.Document, mut Mutator, sink diag.Sink) *Realm {
	if sink == nil {
		sink = diag.Nop{}
	}
	r := &Realm{
		vm:         goja.New(),
		doc:        doc,
		mut:        mut,
		sink:       sink,
		queue:      NewTaskQueue(),
		byNode:     make(map[dom.NodeID]int),
		listeners:  make(map[int]map[string][]goja.Callable),
		TaskBudget: DefaultTaskBudget,
	}
	r.installGlobals()
	return r
}

// Queue exposes the realm's task queue.
func (r *Realm) Queue() *TaskQueue { return r.queue }

// Close tears the runtime down; any running task is interrupted.
func (r *Realm) Close() {
	r.vm.Interrupt("realm closed")
}

// Execute runs src as one task, to completion. The returned error is
// the task's failure, if any; later tasks are unaffected either way.
func (r *Realm) Execute(name, src string) error {
	return r.runTask(name, func() error {
		_, err := r.vm.RunString(src)
		return err
	})
}

// RunTasks runs queued tasks and due timers until none remain
// runnable. Returns the number of tasks run.
func (r *Realm) RunTasks() int {
	n := 0
	for {
		t, ok := r.queue.pop()
		if !ok {
			return n
		}
		r.runTask(t.name, t.fn)
		n++
	}
}

func (r *Realm) runTask(name string, fn func() error) error {
	if r.TaskBudget > 0 {
		timer := time.AfterFunc(r.TaskBudget, func() {
			r.vm.Interrupt("task budget exceeded")
		})
		defer func() {
			timer.Stop()
			r.vm.ClearInterrupt()
		}()
	}
	if r.AfterTask != nil {
		defer r.AfterTask()
	}

	err := fn()
	if err == nil {
		return nil
	}
	rerr := &ScriptRuntimeError{Script: name, Cause: err}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		rerr.Cause = fmt.Errorf("watchdog: %w", err)
	}
	r.sink.Report(diag.Diagnostic{
		Severity: diag.Error,
		Stage:    diag.StageScript,
		Message:  rerr.Error(),
	})
	return rerr
}

// handleFor returns (allocating if needed) the handle slot for n.
func (r *Realm) handleFor(n *dom.Node) int {
	if idx, ok := r.byNode[n.ID]; ok {
		return idx
	}
	r.slots = append(r.slots, slot{node: n, live: true})
	idx := len(r.slots) - 1
	r.byNode[n.ID] = idx
	return idx
}

// NodeRemoved tombstones the handles of n and its whole subtree. Any
// wrapper still referencing them throws a StaleHandleError on next
// use.
func (r *Realm) NodeRemoved(n *dom.Node) {
	n.Walk(func(d *dom.Node) {
		if idx, ok := r.byNode[d.ID]; ok {
			r.slots[idx].live = false
			r.slots[idx].gen++
			delete(r.byNode, d.ID)
			delete(r.listeners, idx)
		}
	})
}

// deref resolves a handle or throws StaleHandleError into JS.
func (r *Realm) deref(idx int, gen uint32, op string) *dom.Node {
	if idx < 0 || idx >= len(r.slots) || !r.slots[idx].live || r.slots[idx].gen != gen {
		err := &StaleHandleError{Op: op}
		r.sink.Report(diag.Diagnostic{
			Severity: diag.Warning,
			Stage:    diag.StageScript,
			Message:  err.Error(),
		})
		panic(r.vm.NewGoError(err))
	}
	return r.slots[idx].node
}

func (r *Realm) throw(err error) {
	panic(r.vm.NewGoError(err))
}

// wrap returns the JS wrapper for n, creating it on first use. The
// wrapper never exposes the *dom.Node itself, only handle-checked
// operations.
func (r *Realm) wrap(n *dom.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	idx := r.handleFor(n)
	if r.slots[idx].wrapper != nil {
		return r.slots[idx].wrapper
	}
	gen := r.slots[idx].gen
	obj := r.vm.NewObject()
	r.slots[idx].wrapper = obj

	obj.DefineDataProperty(handleProp, r.vm.ToValue(idx), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	obj.Set("tagName", n.Tag)
	obj.Set("nodeKind", nodeKindName(n.Kind))

	get := func(op string) *dom.Node { return r.deref(idx, gen, op) }

	obj.DefineAccessorProperty("parentNode", r.vm.ToValue(func() goja.Value {
		return r.wrap(get("parentNode").Parent)
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("childNodes", r.vm.ToValue(func() goja.Value {
		node := get("childNodes")
		items := make([]interface{}, len(node.Children))
		for i, c := range node.Children {
			items[i] = r.wrap(c)
		}
		return r.vm.NewArray(items...)
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("textContent", r.vm.ToValue(func() string {
		return get("textContent").TextContent()
	}), r.vm.ToValue(func(v string) {
		node := get("textContent")
		if err := r.mut.SetText(node, v); err != nil {
			r.throw(err)
		}
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("getAttribute", func(name string) goja.Value {
		v, ok := get("getAttribute").GetAttribute(name)
		if !ok {
			return goja.Null()
		}
		return r.vm.ToValue(v)
	})
	obj.Set("setAttribute", func(name, value string) {
		if err := r.mut.SetAttribute(get("setAttribute"), name, value); err != nil {
			r.throw(err)
		}
	})

	obj.Set("appendChild", func(child goja.Value) goja.Value {
		parent := get("appendChild")
		c := r.unwrap(child, "appendChild")
		var err error
		if c.Parent != nil {
			err = r.mut.MoveNode(c, parent, nil)
		} else {
			err = r.mut.InsertNode(parent, c, nil)
		}
		if err != nil {
			r.throw(err)
		}
		return child
	})
	obj.Set("insertBefore", func(child, ref goja.Value) goja.Value {
		parent := get("insertBefore")
		c := r.unwrap(child, "insertBefore")
		var before *dom.Node
		if !goja.IsNull(ref) && !goja.IsUndefined(ref) {
			before = r.unwrap(ref, "insertBefore")
		}
		var err error
		if c.Parent != nil {
			err = r.mut.MoveNode(c, parent, before)
		} else {
			err = r.mut.InsertNode(parent, c, before)
		}
		if err != nil {
			r.throw(err)
		}
		return child
	})
	obj.Set("removeChild", func(child goja.Value) goja.Value {
		parent := get("removeChild")
		c := r.unwrap(child, "removeChild")
		if c.Parent != parent {
			r.throw(fmt.Errorf("removeChild: node is not a child of this element"))
		}
		if err := r.mut.RemoveNode(c); err != nil {
			r.throw(err)
		}
		return child
	})

	obj.Set("addEventListener", func(event string, cb goja.Value) {
		get("addEventListener")
		fn, ok := goja.AssertFunction(cb)
		if !ok {
			r.throw(fmt.Errorf("addEventListener: listener is not a function"))
		}
		byEvent := r.listeners[idx]
		if byEvent == nil {
			byEvent = make(map[string][]goja.Callable)
			r.listeners[idx] = byEvent
		}
		byEvent[event] = append(byEvent[event], fn)
	})
	obj.Set("dispatchEvent", func(event string) {
		get("dispatchEvent")
		for _, fn := range r.listeners[idx][event] {
			if _, err := fn(goja.Undefined(), r.vm.ToValue(event), obj); err != nil {
				r.throw(err)
			}
		}
	})

	return obj
}

// unwrap maps a JS wrapper back to its node, handle-checked.
func (r *Realm) unwrap(v goja.Value, op string) *dom.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		r.throw(fmt.Errorf("%s: not a node", op))
	}
	hv := obj.Get(handleProp)
	if hv == nil || goja.IsUndefined(hv) {
		r.throw(fmt.Errorf("%s: not a node", op))
	}
	idx := int(hv.ToInteger())
	if idx < 0 || idx >= len(r.slots) {
		r.throw(fmt.Errorf("%s: not a node", op))
	}
	return r.deref(idx, r.slots[idx].gen, op)
}

func (r *Realm) installGlobals() {
	doc := r.vm.NewObject()
	doc.Set("createElement", func(tag string) goja.Value {
		return r.wrap(r.doc.CreateElement(tag))
	})
	doc.Set("createTextNode", func(s string) goja.Value {
		return r.wrap(r.doc.CreateText(s))
	})
	doc.Set("getElementById", func(id string) goja.Value {
		return r.wrap(r.doc.GetElementByAttr("id", id))
	})
	doc.Set("getElementsByTagName", func(tag string) goja.Value {
		return r.wrapAll(r.doc.ElementsByTag(tag))
	})
	doc.Set("getElementsByClassName", func(cls string) goja.Value {
		return r.wrapAll(r.doc.ElementsByClass(cls))
	})
	doc.DefineAccessorProperty("body", r.vm.ToValue(func() goja.Value {
		return r.wrap(r.doc.Root)
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	r.vm.Set("document", doc)

	r.vm.Set("setTimeout", func(cb goja.Value, ms int64) {
		fn, ok := goja.AssertFunction(cb)
		if !ok {
			r.throw(fmt.Errorf("setTimeout: callback is not a function"))
		}
		r.queue.PostDelayed("timer", func() error {
			_, err := fn(goja.Undefined())
			return err
		}, time.Duration(ms)*time.Millisecond)
	})

	r.installConsole()
}

func (r *Realm) wrapAll(nodes []*dom.Node) goja.Value {
	items := make([]interface{}, len(nodes))
	for i, n := range nodes {
		items[i] = r.wrap(n)
	}
	return r.vm.NewArray(items...)
}

func nodeKindName(k dom.NodeKind) string {
	switch k {
	case dom.TextNode:
		return "text"
	case dom.CommentNode:
		return "comment"
	}
	return "element"
}
