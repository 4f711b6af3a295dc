package machine

// objType tags the dynamic type of a heap object, mirroring clox's ObjType
// enum. Go already tags every value with its dynamic type, but the garbage
// collector still needs this header (mark bit, intrusive next pointer) on
// every heap object independently of Go's own memory manager, because the
// heap it sweeps is ours, not the Go runtime's.
type objType uint8

const (
	objString objType = iota
	objFunction
	objNative
	objClosure
	objUpvalue
)

// object is implemented by every heap-allocated Value. It exposes the common
// header that the allocator and collector need: a mark bit for the tracing
// collector and an intrusive link into the VM's all-objects list.
type object interface {
	Value
	objHeader() *header
	objType() objType
}

// header is embedded in every heap object. It is never exposed outside the
// machine package.
type header struct {
	marked bool
	next   object
}

func (h *header) objHeader() *header { return h }
