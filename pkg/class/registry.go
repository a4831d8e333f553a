package class

import (
	goerrors "errors"
	"log/slog"

	"github.com/nooga/tsrt/pkg/config"
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// Registry is the arena of classes of one realm. It also owns the realm's
// global symbol registry and its builtin classes.
type Registry struct {
	opts    config.Options
	log     *slog.Logger
	classes []*Class

	builtins   map[string]*Class
	symbols    map[string]*value.Symbol
	symbolKeys map[*value.Symbol]string

	running map[frame]bool // derived constructors on the stack; true once super returned
}

// NewRegistry creates a registry with the builtin Error family and the
// primitive box classes already defined.
func NewRegistry(opts config.Options, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{
		opts:       opts,
		log:        log,
		builtins:   make(map[string]*Class),
		symbols:    make(map[string]*value.Symbol),
		symbolKeys: make(map[*value.Symbol]string),
		running:    make(map[frame]bool),
	}
	r.defineBuiltins()
	return r
}

// Define allocates a new root class.
func (r *Registry) Define(name string) *Class {
	c := &Class{
		reg:    r,
		id:     ID(len(r.classes)),
		name:   name,
		parent: NoParent,
		proto:  value.NewObject(),
		ctor:   value.Undefined,
	}
	c.statics = value.NewFunction(name, func(value.Value, []value.Value) (value.Value, error) {
		return value.Undefined, errors.NewTypeError("Class constructor %s cannot be invoked without 'new'", name)
	})
	c.statics.SetHooks(staticHooks{c})
	c.statics.SetInternal(c)
	c.proto.RawSet(value.Key("constructor"), c.statics.Value())
	r.classes = append(r.classes, c)
	return c
}

// Class returns the class with the given ID, or nil.
func (r *Registry) Class(id ID) *Class {
	if id < 0 || int(id) >= len(r.classes) {
		return nil
	}
	return r.classes[id]
}

// Builtin returns a builtin class by name ("Error", "TypeError", "String",
// ...), or nil.
func (r *Registry) Builtin(name string) *Class { return r.builtins[name] }

// Extend makes base the parent of target. Re-extending only replaces the
// parent link; nothing is copied, so inherited accessors and descriptors of
// base keep working for target's instances through the chain walk.
func (r *Registry) Extend(target, base *Class) error {
	if target.reg != r || base.reg != r {
		return errors.NewTypeError("Class extends value %s is not a class of this realm", base.name)
	}
	if target.parent != NoParent && target.parent != base.id {
		r.log.Debug("class re-extended", "class", target.name, "from", r.classes[target.parent].name, "to", base.name)
	}
	target.parent = base.id
	return nil
}

// chain returns c and its ancestors, root first.
func (c *Class) chain() ([]*Class, error) {
	var out []*Class
	for cur := c; cur != nil; cur = cur.Parent() {
		if len(out) >= c.reg.opts.MaxChainDepth {
			return nil, errChainTooDeep(c)
		}
		out = append(out, cur)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// New constructs an instance of c. A root class initializes its fields and
// then runs its constructor body; a derived class initializes its own fields
// when its super call returns. A class without a constructor behaves as
// super(...args). A constructor returning a table replaces the instance.
func New(c *Class, args ...value.Value) (value.Value, error) {
	if c.coerce != nil {
		return c.coerce(args)
	}
	if _, err := c.chain(); err != nil {
		return value.Undefined, err
	}
	this := value.NewObjectWithHooks(c).Value()
	res, err := c.construct(this, args)
	if err != nil {
		return value.Undefined, err
	}
	if res.IsObject() {
		return res, nil
	}
	return this, nil
}

// frame identifies one running derived constructor.
type frame struct {
	obj   *value.Object
	class ID
}

func (c *Class) construct(this value.Value, args []value.Value) (value.Value, error) {
	if c.Parent() == nil {
		if err := c.initFields(this); err != nil {
			return value.Undefined, err
		}
		if c.ctor.IsUndefined() {
			return value.Undefined, nil
		}
		return value.Call(c.ctor, this, args...)
	}
	if c.ctor.IsUndefined() {
		return value.Undefined, c.SuperCall(this, args...)
	}
	f := frame{this.AsObject(), c.id}
	c.reg.running[f] = false
	defer delete(c.reg.running, f)
	res, err := value.Call(c.ctor, this, args...)
	if err != nil {
		return value.Undefined, err
	}
	if !c.reg.running[f] && !res.IsObject() {
		return value.Undefined, errors.NewReferenceError("Must call super constructor in derived class before accessing 'this' or returning from derived constructor")
	}
	return res, nil
}

func (c *Class) initFields(this value.Value) error {
	if len(c.fields) == 0 {
		return nil
	}
	o := this.AsObject()
	if o == nil {
		return errors.NewTypeError("Cannot initialize fields of %s on %s", c.name, value.Inspect(this))
	}
	for _, f := range c.fields {
		v := value.Undefined
		if f.Init != nil {
			var err error
			if v, err = f.Init(this); err != nil {
				return err
			}
		}
		o.RawSet(f.Key, v)
	}
	return nil
}

// Of returns the class an instance was constructed from.
func Of(v value.Value) (*Class, bool) {
	o := v.AsObject()
	if o == nil {
		return nil, false
	}
	h := value.FindHooks(o.Hooks(), func(h value.Hooks) bool {
		_, ok := h.(*Class)
		return ok
	})
	if h == nil {
		return nil, false
	}
	return h.(*Class), true
}

// FromValue recovers a class from its source value (the statics table).
func FromValue(v value.Value) (*Class, bool) {
	o := v.AsObject()
	if o == nil {
		return nil, false
	}
	c, ok := o.Internal().(*Class)
	return c, ok
}

// InstanceOf reports whether c appears on v's class chain. Classes are
// compared by dispatch-table identity, so a structurally identical class
// from another realm never matches. It never fails: a chain that is too
// deep is reported as no match.
func InstanceOf(v value.Value, c *Class) bool {
	start, ok := Of(v)
	if !ok || c == nil {
		return false
	}
	depth := 0
	for cur := start; cur != nil; cur = cur.Parent() {
		if depth++; depth > start.reg.opts.MaxChainDepth {
			return false
		}
		if cur.proto == c.proto {
			return true
		}
	}
	return false
}

// SymbolFor returns the registry-wide symbol for key, creating it once.
func (r *Registry) SymbolFor(key string) *value.Symbol {
	if s, ok := r.symbols[key]; ok {
		return s
	}
	s := value.NewSymbol(key)
	r.symbols[key] = s
	r.symbolKeys[s] = key
	return s
}

// KeyFor returns the registry key of a symbol created by SymbolFor.
func (r *Registry) KeyFor(s *value.Symbol) (string, bool) {
	k, ok := r.symbolKeys[s]
	return k, ok
}

// ErrorValue converts a Go error into the value a catch clause receives:
// thrown values unchanged, runtime errors as instances of the matching
// builtin error class.
func (r *Registry) ErrorValue(err error) value.Value {
	if err == nil {
		return value.Undefined
	}
	var exc *errors.Exception
	if goerrors.As(err, &exc) {
		if v, ok := exc.Value.(value.Value); ok {
			return v
		}
	}
	c := r.builtins["Error"]
	msg := err.Error()
	var re errors.RuntimeError
	if goerrors.As(err, &re) {
		if b, ok := r.builtins[re.Kind()]; ok {
			c = b
		}
		msg = re.Message()
	}
	args := []value.Value{value.String(msg)}
	var agg *errors.AggregateError
	if goerrors.As(err, &agg) {
		args = []value.Value{value.ArrayOf(value.ReasonValues(agg.Reasons)...), value.String(msg)}
	}
	v, nerr := New(c, args...)
	if nerr != nil {
		return value.FromError(err)
	}
	if ed, ok := v.AsObject().Internal().(*value.ErrorData); ok {
		ed.Cause = err
	}
	return v
}
