package ast

// String is a parser-owned string handle, the counterpart of libclang's
// CXString. Read it with CString and release it with Dispose; a disposed
// handle reads as empty. The zero value is an empty, already-released string.
type String struct {
	h *stringHandle
}

type stringHandle struct {
	text     string
	disposed bool
}

// NewString allocates a handle holding s. Parser backends use it to hand out
// names and file paths.
func NewString(s string) String {
	return String{h: &stringHandle{text: s}}
}

// CString returns the current contents without releasing the handle.
func (s String) CString() string {
	if s.h == nil || s.h.disposed {
		return ""
	}
	return s.h.text
}

// Dispose releases the handle. Calling it more than once is harmless.
func (s String) Dispose() {
	if s.h == nil {
		return
	}
	s.h.text = ""
	s.h.disposed = true
}

// Disposed reports whether Dispose has been called.
func (s String) Disposed() bool {
	return s.h == nil || s.h.disposed
}
