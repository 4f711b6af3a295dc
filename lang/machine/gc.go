package machine

// heapGrowFactor is the multiplier applied to bytesAllocated, right after a
// collection, to compute the next collection's trigger threshold.
const heapGrowFactor = 2

// initialNextGC is the trigger threshold before the first collection has
// ever run.
const initialNextGC = 1024 * 1024

// allocate accounts for a freshly constructed heap object's approximate
// size, runs a collection if that growth crossed nextGC (or if StressGC is
// set), and then links the object into the VM's intrusive all-objects list.
// The collection runs before the object is linked in, so it never has a
// chance to observe the new object as unreachable. Anything the object
// references must already be rooted, and the caller must root the object
// itself (VM stack, globals table or compiler root) before the next
// allocation.
func (vm *VM) allocate(o object, size int) {
	vm.bytesAllocated += size
	if vm.bytesAllocated > vm.nextGC || vm.StressGC {
		vm.collectGarbage()
	}

	h := o.objHeader()
	h.next = vm.objects
	vm.objects = o
}

func sizeofString(chars string) int  { return 24 + len(chars) }
func sizeofFunction() int            { return 64 }
func sizeofNative() int              { return 48 }
func sizeofClosure(upvalues int) int { return 32 + 8*upvalues }
func sizeofUpvalue() int             { return 32 }

// newString allocates a fresh, uninterned ObjString. Callers that want
// interning semantics must go through internString instead.
func (vm *VM) newString(chars string) *ObjString {
	s := &ObjString{chars: chars, hash: hashString(chars)}
	vm.allocate(s, sizeofString(chars))
	return s
}

// internString returns the canonical ObjString for chars, allocating and
// interning a new one only if one with identical contents does not already
// exist. This is what guarantees that identity equality and content
// equality coincide for strings.
func (vm *VM) internString(chars string) *ObjString {
	hash := hashString(chars)
	if s := vm.strings.findString(chars, hash); s != nil {
		return s
	}
	s := &ObjString{chars: chars, hash: hash}
	// Keep the new string on the stack while it is allocated and interned,
	// then pop it.
	vm.push(s)
	vm.allocate(s, sizeofString(chars))
	vm.strings.Set(s, Nil)
	vm.pop()
	return s
}

func (vm *VM) newFunction() *ObjFunction {
	fn := &ObjFunction{}
	vm.allocate(fn, sizeofFunction())
	return fn
}

func (vm *VM) newNative(name string, arity int, fn NativeFn) *ObjNative {
	n := &ObjNative{Name: name, Arity: arity, Fn: fn}
	vm.allocate(n, sizeofNative())
	return n
}

func (vm *VM) newClosure(fn *ObjFunction) *ObjClosure {
	c := &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
	vm.allocate(c, sizeofClosure(fn.UpvalueCount))
	return c
}

func (vm *VM) newUpvalue(stackIndex int) *ObjUpvalue {
	u := &ObjUpvalue{StackIndex: stackIndex, Open: true}
	vm.allocate(u, sizeofUpvalue())
	return u
}

// markValue marks v if it is a heap object; immediate values (Nil, Bool,
// Number) need no marking.
func (vm *VM) markValue(v Value) {
	if o, ok := v.(object); ok {
		vm.markObject(o)
	}
}

// markObject pushes o onto the gray worklist the first time it is seen.
// Marking o white->gray happens here; it becomes black only once blacken
// has processed its outgoing references.
func (vm *VM) markObject(o object) {
	if o == nil {
		return
	}
	h := o.objHeader()
	if h.marked {
		return
	}
	h.marked = true
	vm.grayStack = append(vm.grayStack, o)
}

// markCompilerRoots marks every in-flight function along the chain of
// enclosing compilers, supplied by the compiler package via
// PushCompilerRoot/PopCompilerRoot.
func (vm *VM) markCompilerRoots() {
	for _, fn := range vm.compilerRoots {
		vm.markObject(fn)
	}
}

// PushCompilerRoot registers fn as reachable for the duration of its
// compilation, so a GC triggered by an allocation made while compiling
// (e.g. interning a string or number constant) does not collect a function
// that is not yet referenced from anywhere else. Callers must pair this
// with PopCompilerRoot once the function's compilation (and that of any
// nested function it contains) is complete.
func (vm *VM) PushCompilerRoot(fn *ObjFunction) { vm.compilerRoots = append(vm.compilerRoots, fn) }

// PopCompilerRoot undoes the most recent PushCompilerRoot.
func (vm *VM) PopCompilerRoot() { vm.compilerRoots = vm.compilerRoots[:len(vm.compilerRoots)-1] }

// markRoots marks every VM- and compiler-owned root: the value stack, every
// frame's closure, the open-upvalue list, the globals table, and in-flight
// compiler functions. The string intern table is deliberately excluded —
// see Table.removeWhite.
func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < len(vm.frames); i++ {
		vm.markObject(vm.frames[i].closure)
	}
	for u := vm.openUpvalues; u != nil; u = u.next {
		vm.markObject(u)
	}
	vm.globals.mark(vm)
	vm.markCompilerRoots()
}

// blacken visits the outgoing references of a gray object, marking each one
// gray in turn (via markObject/markValue), turning o black once done: it
// will not be revisited this collection.
func (vm *VM) blacken(o object) {
	switch o := o.(type) {
	case *ObjClosure:
		vm.markObject(o.Function)
		for _, u := range o.Upvalues {
			if u != nil {
				vm.markObject(u)
			}
		}
	case *ObjFunction:
		if o.Name != nil {
			vm.markObject(o.Name)
		}
		for _, c := range o.Chunk.Constants {
			vm.markValue(c)
		}
	case *ObjUpvalue:
		vm.markValue(o.Closed)
	case *ObjString, *ObjNative:
		// no outgoing references
	}
}

// collectGarbage runs one full tracing mark-sweep cycle: mark every root,
// drain the gray worklist, drop now-dangling intern-table entries, sweep
// every white object from the all-objects list, then grow nextGC relative
// to the memory that survived.
func (vm *VM) collectGarbage() {
	vm.markRoots()
	for len(vm.grayStack) > 0 {
		n := len(vm.grayStack) - 1
		o := vm.grayStack[n]
		vm.grayStack = vm.grayStack[:n]
		vm.blacken(o)
	}

	vm.strings.removeWhite()
	vm.sweep()

	vm.nextGC = vm.bytesAllocated * heapGrowFactor
}

// sweep walks the all-objects intrusive list, freeing (unlinking) every
// white object and clearing the mark bit of every object that survives, so
// the heap is ready for the next collection cycle.
func (vm *VM) sweep() {
	var prev object
	cur := vm.objects
	for cur != nil {
		h := cur.objHeader()
		if h.marked {
			h.marked = false
			prev = cur
			cur = h.next
			continue
		}

		unreached := cur
		cur = h.next
		if prev != nil {
			prev.objHeader().next = cur
		} else {
			vm.objects = cur
		}
		vm.bytesAllocated -= sizeofObject(unreached)
	}
}

func sizeofObject(o object) int {
	switch o := o.(type) {
	case *ObjString:
		return sizeofString(o.chars)
	case *ObjFunction:
		return sizeofFunction()
	case *ObjNative:
		return sizeofNative()
	case *ObjClosure:
		return sizeofClosure(len(o.Upvalues))
	case *ObjUpvalue:
		return sizeofUpvalue()
	default:
		return 0
	}
}
