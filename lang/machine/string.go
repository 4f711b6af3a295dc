package machine

// ObjString is an immutable, interned sequence of bytes. No two live
// ObjStrings ever hold equal contents: the VM's intern table guarantees
// identity-equals-contents by looking up (and returning) an existing
// ObjString before ever allocating a new one for the same bytes.
type ObjString struct {
	header
	chars string
	hash  uint32
}

var _ Value = (*ObjString)(nil)

func (s *ObjString) String() string    { return s.chars }
func (s *ObjString) Type() string      { return "string" }
func (s *ObjString) objType() objType  { return objString }
func (s *ObjString) Len() int          { return len(s.chars) }

// hashString computes the 32-bit FNV-1a hash of s, as specified for
// ObjString.
func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
