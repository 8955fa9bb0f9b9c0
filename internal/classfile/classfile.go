package classfile

// Class-file version 52.0 (Java 8): the earliest with invokedynamic plus
// interface default methods.
const (
	Magic        = 0xCAFEBABE
	MinorVersion = 0
	MajorVersion = 52
)

type FieldInfo struct {
	flags uint16
	name  uint16
	desc  uint16
}

type MethodInfo struct {
	flags uint16
	name  uint16
	desc  uint16
	code  *Code
}

type bootstrapMethod struct {
	handle uint16
	args   []uint16
}

// ClassFile models one class artifact under construction. All strings use
// internal names ("java/lang/Object"); Bytes serialises the wire format.
type ClassFile struct {
	pool       *ConstPool
	flags      uint16
	thisClass  uint16
	superClass uint16
	interfaces []uint16
	fields     []FieldInfo
	methods    []MethodInfo
	bootstrap  []bootstrapMethod
	sourceFile uint16
}

func NewClassFile(name, super string, flags uint16) *ClassFile {
	pool := NewConstPool()
	return &ClassFile{
		pool:       pool,
		flags:      flags,
		thisClass:  pool.Class(name),
		superClass: pool.Class(super),
	}
}

func (cf *ClassFile) Pool() *ConstPool {
	return cf.pool
}

func (cf *ClassFile) AddInterface(name string) {
	cf.interfaces = append(cf.interfaces, cf.pool.Class(name))
}

func (cf *ClassFile) AddField(flags uint16, name, desc string) {
	cf.fields = append(cf.fields, FieldInfo{
		flags: flags,
		name:  cf.pool.Utf8(name),
		desc:  cf.pool.Utf8(desc),
	})
}

// AddMethod registers a method; code may be nil for abstract methods.
func (cf *ClassFile) AddMethod(flags uint16, name, desc string, code *Code) {
	cf.methods = append(cf.methods, MethodInfo{
		flags: flags,
		name:  cf.pool.Utf8(name),
		desc:  cf.pool.Utf8(desc),
		code:  code,
	})
}

// AddBootstrapMethod appends to the BootstrapMethods attribute and returns
// the entry's index for invokedynamic constants.
func (cf *ClassFile) AddBootstrapMethod(handle uint16, args []uint16) uint16 {
	for i, bm := range cf.bootstrap {
		if bm.handle == handle && equalArgs(bm.args, args) {
			return uint16(i)
		}
	}
	cf.bootstrap = append(cf.bootstrap, bootstrapMethod{handle: handle, args: args})
	return uint16(len(cf.bootstrap) - 1)
}

func equalArgs(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (cf *ClassFile) SetSourceFile(name string) {
	cf.sourceFile = cf.pool.Utf8(name)
	cf.pool.Utf8("SourceFile")
}

// Bytes serialises the class file. Attribute names are interned lazily here,
// before the pool is written.
func (cf *ClassFile) Bytes() []byte {
	codeAttr := cf.pool.Utf8("Code")
	var lineAttr, stackAttr uint16
	for _, m := range cf.methods {
		if m.code == nil {
			continue
		}
		if len(m.code.lines) > 0 {
			lineAttr = cf.pool.Utf8("LineNumberTable")
		}
		// Frame object classes must hit the pool before it serialises.
		for _, fr := range m.code.referencedFrames() {
			stackAttr = cf.pool.Utf8("StackMapTable")
			for _, vt := range fr.label.frame.locals {
				if vt.Tag == VtObject {
					cf.pool.Class(vt.Class)
				}
			}
			for _, vt := range fr.label.frame.stack {
				if vt.Tag == VtObject {
					cf.pool.Class(vt.Class)
				}
			}
		}
	}
	var bootstrapAttr uint16
	if len(cf.bootstrap) > 0 {
		bootstrapAttr = cf.pool.Utf8("BootstrapMethods")
	}

	w := &writer{}
	w.u4(Magic)
	w.u2(MinorVersion)
	w.u2(MajorVersion)
	cf.pool.write(w)
	w.u2(cf.flags)
	w.u2(cf.thisClass)
	w.u2(cf.superClass)

	w.u2(uint16(len(cf.interfaces)))
	for _, iface := range cf.interfaces {
		w.u2(iface)
	}

	w.u2(uint16(len(cf.fields)))
	for _, f := range cf.fields {
		w.u2(f.flags)
		w.u2(f.name)
		w.u2(f.desc)
		w.u2(0) // no field attributes
	}

	w.u2(uint16(len(cf.methods)))
	for _, m := range cf.methods {
		w.u2(m.flags)
		w.u2(m.name)
		w.u2(m.desc)
		if m.code == nil {
			w.u2(0)
			continue
		}
		w.u2(1)
		cf.writeCodeAttribute(w, m.code, codeAttr, lineAttr, stackAttr)
	}

	var classAttrs [][]byte
	if cf.sourceFile != 0 {
		aw := &writer{}
		aw.u2(cf.pool.Utf8("SourceFile"))
		aw.u4(2)
		aw.u2(cf.sourceFile)
		classAttrs = append(classAttrs, aw.buf)
	}
	if len(cf.bootstrap) > 0 {
		classAttrs = append(classAttrs, cf.bootstrapAttribute(bootstrapAttr))
	}

	w.u2(uint16(len(classAttrs)))
	for _, attr := range classAttrs {
		w.bytes(attr)
	}
	return w.buf
}

func (cf *ClassFile) writeCodeAttribute(w *writer, code *Code, codeAttr, lineAttr, stackAttr uint16) {
	var attrs [][]byte
	if len(code.lines) > 0 {
		aw := &writer{}
		aw.u2(lineAttr)
		aw.u4(uint32(2 + 4*len(code.lines)))
		aw.u2(uint16(len(code.lines)))
		for _, entry := range code.lines {
			aw.u2(entry.pc)
			aw.u2(entry.line)
		}
		attrs = append(attrs, aw.buf)
	}
	if frames := code.referencedFrames(); len(frames) > 0 {
		attrs = append(attrs, code.stackMapTable(stackAttr, frames))
	}

	body := &writer{}
	body.u2(uint16(code.maxStack))
	maxLocals := code.maxLocals
	body.u2(uint16(maxLocals))
	body.u4(uint32(len(code.buf)))
	body.bytes(code.buf)
	body.u2(0) // exception table
	body.u2(uint16(len(attrs)))
	for _, attr := range attrs {
		body.bytes(attr)
	}

	w.u2(codeAttr)
	w.u4(uint32(len(body.buf)))
	w.bytes(body.buf)
}

func (cf *ClassFile) bootstrapAttribute(nameIndex uint16) []byte {
	body := &writer{}
	body.u2(uint16(len(cf.bootstrap)))
	for _, bm := range cf.bootstrap {
		body.u2(bm.handle)
		body.u2(uint16(len(bm.args)))
		for _, arg := range bm.args {
			body.u2(arg)
		}
	}

	aw := &writer{}
	aw.u2(nameIndex)
	aw.u4(uint32(len(body.buf)))
	aw.bytes(body.buf)
	return aw.buf
}

// referencedFrames returns the branch-target frames in offset order,
// deduplicated; only labels something actually jumps to need map entries.
func (c *Code) referencedFrames() []frameRecord {
	var frames []frameRecord
	seen := make(map[int]bool)
	for _, fr := range c.frames {
		if !fr.label.referenced || seen[fr.offset] {
			continue
		}
		seen[fr.offset] = true
		frames = append(frames, fr)
	}
	for i := 1; i < len(frames); i++ {
		for j := i; j > 0 && frames[j].offset < frames[j-1].offset; j-- {
			frames[j], frames[j-1] = frames[j-1], frames[j]
		}
	}
	return frames
}

// stackMapTable serialises every frame as a full_frame; always legal, never
// the compact encodings.
func (c *Code) stackMapTable(nameIndex uint16, frames []frameRecord) []byte {
	body := &writer{}
	body.u2(uint16(len(frames)))

	prev := -1
	for _, fr := range frames {
		delta := fr.offset - prev - 1
		if prev < 0 {
			delta = fr.offset
		}
		prev = fr.offset

		body.u1(255) // full_frame
		body.u2(uint16(delta))
		writeVerifList(body, c.pool, collapseWide(fr.label.frame.locals))
		writeVerifList(body, c.pool, fr.label.frame.stack)
	}

	aw := &writer{}
	aw.u2(nameIndex)
	aw.u4(uint32(len(body.buf)))
	aw.bytes(body.buf)
	return aw.buf
}

// collapseWide drops the Top filler slots that follow wide locals; frame
// entries count a double as a single item.
func collapseWide(locals []VerifType) []VerifType {
	var out []VerifType
	for i := 0; i < len(locals); i++ {
		out = append(out, locals[i])
		if locals[i].wide() {
			i++
		}
	}
	return out
}

func writeVerifList(w *writer, pool *ConstPool, list []VerifType) {
	w.u2(uint16(len(list)))
	for _, vt := range list {
		w.u1(vt.Tag)
		if vt.Tag == VtObject {
			w.u2(pool.Class(vt.Class))
		}
	}
}

// writer accumulates big-endian bytes.
type writer struct {
	buf []byte
}

func (w *writer) u1(v byte) {
	w.buf = append(w.buf, v)
}

func (w *writer) u2(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

func (w *writer) u4(v uint32) {
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (w *writer) u8(v uint64) {
	w.u4(uint32(v >> 32))
	w.u4(uint32(v))
}

func (w *writer) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}
