// Package runtime provides the host side of the usecode value runtime:
// the game objects pointer values refer to, the class templates class
// values are built from, and the store persisted values are kept in.
package runtime

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/usecode/vm"
)

var log = commonlog.GetLogger("usecode.runtime")

// ErrObjectDestroyed indicates an operation on an object whose last share
// has been released.
var ErrObjectDestroyed = errors.New("object destroyed")

// Object is a game object that usecode pointer values can refer to.
// It implements vm.GameObject.
type Object struct {
	ID        string
	Shape     int
	Frame     int
	CreatedAt time.Time

	space     *ObjectSpace
	refs      int
	held      bool // the space still holds its own share
	destroyed bool
	mu        sync.Mutex
}

// Retain records a new share of the object.
func (o *Object) Retain() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.destroyed {
		log.Warningf("retain of destroyed object %s", o.ID)
		return
	}
	o.refs++
}

// Release drops a share. Releasing the last one destroys the object.
func (o *Object) Release() {
	o.mu.Lock()
	if o.refs == 0 {
		o.mu.Unlock()
		log.Warningf("release of object %s with no shares", o.ID)
		return
	}
	o.refs--
	last := o.refs == 0
	if last {
		o.destroyed = true
	}
	o.mu.Unlock()

	if last && o.space != nil {
		o.space.destroy(o)
	}
}

// Refs returns the number of live shares.
func (o *Object) Refs() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.refs
}

// Destroyed reports whether the last share has been released.
func (o *Object) Destroyed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.destroyed
}

// ObjectSpace holds the live game objects and class templates.
type ObjectSpace struct {
	objects map[string]*Object
	classes map[string]*vm.ClassSymbol

	// OnDestroy, if set, is called after an object's last share is released.
	OnDestroy func(*Object)

	mu sync.RWMutex
}

// NewObjectSpace creates an empty object space.
func NewObjectSpace() *ObjectSpace {
	return &ObjectSpace{
		objects: make(map[string]*Object),
		classes: make(map[string]*vm.ClassSymbol),
	}
}

// NewObject creates an object and registers it. The space holds the
// object's first share until Remove is called.
func (os *ObjectSpace) NewObject(shape, frame int) *Object {
	obj := &Object{
		ID:        uuid.New().String(),
		Shape:     shape,
		Frame:     frame,
		CreatedAt: time.Now(),
		space:     os,
		refs:      1,
		held:      true,
	}

	os.mu.Lock()
	os.objects[obj.ID] = obj
	os.mu.Unlock()

	return obj
}

// Get returns the live object with the given ID, or nil.
func (os *ObjectSpace) Get(id string) *Object {
	os.mu.RLock()
	defer os.mu.RUnlock()
	return os.objects[id]
}

// Ref returns a pointer value holding a new share of the object with the
// given ID.
func (os *ObjectSpace) Ref(id string) (vm.Value, error) {
	obj := os.Get(id)
	if obj == nil || obj.Destroyed() {
		return vm.Value{}, ErrObjectDestroyed
	}
	return vm.FromObject(obj), nil
}

// Remove drops the share the space holds. The object stays alive while
// values still refer to it. Removing twice does nothing.
func (os *ObjectSpace) Remove(obj *Object) {
	obj.mu.Lock()
	held := obj.held
	obj.held = false
	obj.mu.Unlock()
	if held {
		obj.Release()
	}
}

func (os *ObjectSpace) destroy(obj *Object) {
	os.mu.Lock()
	delete(os.objects, obj.ID)
	hook := os.OnDestroy
	os.mu.Unlock()

	log.Debugf("destroyed object %s (shape %d)", obj.ID, obj.Shape)
	if hook != nil {
		hook(obj)
	}
}

// Len returns the number of live objects.
func (os *ObjectSpace) Len() int {
	os.mu.RLock()
	defer os.mu.RUnlock()
	return len(os.objects)
}

// ---------------------------------------------------------------------------
// Class templates
// ---------------------------------------------------------------------------

// RegisterClass records a class template. Registering a name again
// replaces the template; values built from the old one keep it.
func (os *ObjectSpace) RegisterClass(name string, vars []string) *vm.ClassSymbol {
	cls := &vm.ClassSymbol{Name: name, Vars: append([]string(nil), vars...)}
	os.mu.Lock()
	os.classes[name] = cls
	os.mu.Unlock()
	return cls
}

// Class returns the template registered under name, or nil. It can be
// used as a dist.ClassResolver.
func (os *ObjectSpace) Class(name string) *vm.ClassSymbol {
	os.mu.RLock()
	defer os.mu.RUnlock()
	return os.classes[name]
}

// ClassNames returns the registered template names in sorted order.
func (os *ObjectSpace) ClassNames() []string {
	os.mu.RLock()
	names := make([]string, 0, len(os.classes))
	for name := range os.classes {
		names = append(names, name)
	}
	os.mu.RUnlock()
	sort.Strings(names)
	return names
}

// NewInstance builds a class object of the named template with all fields
// undefined.
func (os *ObjectSpace) NewInstance(name string) (vm.Value, bool) {
	cls := os.Class(name)
	if cls == nil {
		return vm.Value{}, false
	}
	var v vm.Value
	v.ClassNew(cls, cls.NumVars())
	return v, true
}
