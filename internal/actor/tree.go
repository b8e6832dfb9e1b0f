package actor

// Root returns the topmost ancestor of a.
func Root(a Actor) Actor {
	for p := a.Core().Parent(); p != nil; p = p.Core().Parent() {
		a = p
	}
	return a
}

// Children returns the direct children of a, or nil if a is not a handler.
func Children(a Actor) []Actor {
	h, ok := a.(Handler)
	if !ok {
		return nil
	}
	out := make([]Actor, 0, h.Size())
	for i := 0; i < h.Size(); i++ {
		out = append(out, h.Get(i))
	}
	return out
}

// Walk visits a and its descendants depth-first in child order. When fn
// returns false the children of the visited actor are skipped.
func Walk(a Actor, fn func(Actor) bool) {
	if !fn(a) {
		return
	}
	for _, c := range Children(a) {
		Walk(c, fn)
	}
}

// Attach makes h the parent of child and bumps the structural version.
func Attach(h Handler, child Actor) {
	child.Core().SetParent(h)
	if env := h.Core().env; env != nil {
		SetEnv(child, env)
	}
	Touch(h)
}

// Detach clears the parent link of child after removal from h.
func Detach(h Handler, child Actor) {
	child.Core().SetParent(nil)
	Touch(h)
}

// SetEnv installs env on a and all its descendants.
func SetEnv(a Actor, env *Env) {
	Walk(a, func(n Actor) bool {
		n.Core().SetEnv(env)
		return true
	})
}

// Version returns the structural version of the tree containing a.
func Version(a Actor) uint64 {
	return Root(a).Core().version.Load()
}

// Touch records a structural mutation of the tree containing a.
func Touch(a Actor) {
	Root(a).Core().version.Add(1)
}
