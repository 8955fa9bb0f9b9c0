package classfile

import (
	"fmt"
	"math"
)

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagInvokeDynamic      = 18
)

type cpEntry struct {
	tag  byte
	str  string
	num  int32
	dbl  float64
	ref1 uint16
	ref2 uint16
	kind byte
}

// ConstPool builds an interned constant pool. Entries are assigned indexes
// on first use; doubles occupy two slots per the class-file format.
type ConstPool struct {
	entries []cpEntry
	next    uint16
	lookup  map[string]uint16
}

func NewConstPool() *ConstPool {
	return &ConstPool{
		next:   1,
		lookup: make(map[string]uint16),
	}
}

func (cp *ConstPool) add(entry cpEntry, key string, wide bool) uint16 {
	if idx, ok := cp.lookup[key]; ok {
		return idx
	}
	idx := cp.next
	cp.entries = append(cp.entries, entry)
	cp.next++
	if wide {
		cp.next++
	}
	cp.lookup[key] = idx
	return idx
}

func (cp *ConstPool) Utf8(s string) uint16 {
	return cp.add(cpEntry{tag: tagUtf8, str: s}, "u:"+s, false)
}

// Class interns a class reference by internal name, e.g. "java/lang/Object".
func (cp *ConstPool) Class(name string) uint16 {
	utf8 := cp.Utf8(name)
	return cp.add(cpEntry{tag: tagClass, ref1: utf8}, "c:"+name, false)
}

func (cp *ConstPool) NameAndType(name, desc string) uint16 {
	n := cp.Utf8(name)
	d := cp.Utf8(desc)
	return cp.add(cpEntry{tag: tagNameAndType, ref1: n, ref2: d}, "nt:"+name+":"+desc, false)
}

func (cp *ConstPool) Fieldref(owner, name, desc string) uint16 {
	c := cp.Class(owner)
	nt := cp.NameAndType(name, desc)
	return cp.add(cpEntry{tag: tagFieldref, ref1: c, ref2: nt}, "f:"+owner+"."+name+":"+desc, false)
}

func (cp *ConstPool) Methodref(owner, name, desc string) uint16 {
	c := cp.Class(owner)
	nt := cp.NameAndType(name, desc)
	return cp.add(cpEntry{tag: tagMethodref, ref1: c, ref2: nt}, "m:"+owner+"."+name+":"+desc, false)
}

func (cp *ConstPool) InterfaceMethodref(owner, name, desc string) uint16 {
	c := cp.Class(owner)
	nt := cp.NameAndType(name, desc)
	return cp.add(cpEntry{tag: tagInterfaceMethodref, ref1: c, ref2: nt}, "im:"+owner+"."+name+":"+desc, false)
}

func (cp *ConstPool) Integer(v int32) uint16 {
	return cp.add(cpEntry{tag: tagInteger, num: v}, fmt.Sprintf("i:%d", v), false)
}

func (cp *ConstPool) Double(v float64) uint16 {
	return cp.add(cpEntry{tag: tagDouble, dbl: v}, fmt.Sprintf("d:%x", math.Float64bits(v)), true)
}

func (cp *ConstPool) StringConst(s string) uint16 {
	utf8 := cp.Utf8(s)
	return cp.add(cpEntry{tag: tagString, ref1: utf8}, "s:"+s, false)
}

func (cp *ConstPool) MethodType(desc string) uint16 {
	utf8 := cp.Utf8(desc)
	return cp.add(cpEntry{tag: tagMethodType, ref1: utf8}, "mt:"+desc, false)
}

func (cp *ConstPool) MethodHandle(kind byte, ref uint16) uint16 {
	return cp.add(cpEntry{tag: tagMethodHandle, kind: kind, ref1: ref}, fmt.Sprintf("mh:%d:%d", kind, ref), false)
}

// InvokeDynamic interns an invokedynamic constant against a bootstrap-method
// index in the class's BootstrapMethods attribute.
func (cp *ConstPool) InvokeDynamic(bootstrapIndex uint16, name, desc string) uint16 {
	nt := cp.NameAndType(name, desc)
	return cp.add(cpEntry{tag: tagInvokeDynamic, ref1: bootstrapIndex, ref2: nt},
		fmt.Sprintf("id:%d:%d", bootstrapIndex, nt), false)
}

// Count is the value serialised as constant_pool_count: highest index + 1.
func (cp *ConstPool) Count() uint16 {
	return cp.next
}

func (cp *ConstPool) write(w *writer) {
	w.u2(cp.Count())
	for _, e := range cp.entries {
		w.u1(e.tag)
		switch e.tag {
		case tagUtf8:
			w.u2(uint16(len(e.str)))
			w.bytes([]byte(e.str))
		case tagInteger:
			w.u4(uint32(e.num))
		case tagDouble:
			w.u8(math.Float64bits(e.dbl))
		case tagClass, tagString, tagMethodType:
			w.u2(e.ref1)
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagInvokeDynamic:
			w.u2(e.ref1)
			w.u2(e.ref2)
		case tagMethodHandle:
			w.u1(e.kind)
			w.u2(e.ref1)
		}
	}
}
