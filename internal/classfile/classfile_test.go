package classfile

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstPoolInterning(t *testing.T) {
	cp := NewConstPool()

	a := cp.Utf8("hello")
	b := cp.Utf8("hello")
	c := cp.Utf8("world")
	assert.Equal(t, a, b, "identical entries intern to one index")
	assert.NotEqual(t, a, c)

	m1 := cp.Methodref("Owner", "m", "()V")
	m2 := cp.Methodref("Owner", "m", "()V")
	assert.Equal(t, m1, m2)
}

func TestConstPoolDoubleTakesTwoSlots(t *testing.T) {
	cp := NewConstPool()

	first := cp.Double(3.14)
	next := cp.Utf8("after")
	assert.Equal(t, first+2, next, "a double occupies two pool slots")
	assert.Equal(t, uint16(next+1), cp.Count())
}

func TestClassFileHeader(t *testing.T) {
	cf := NewClassFile("Foo", "java/lang/Object", AccPublic|AccSuper)
	bytes := cf.Bytes()

	require.Greater(t, len(bytes), 10)
	assert.Equal(t, uint32(Magic), binary.BigEndian.Uint32(bytes[0:4]))
	assert.Equal(t, uint16(MinorVersion), binary.BigEndian.Uint16(bytes[4:6]))
	assert.Equal(t, uint16(MajorVersion), binary.BigEndian.Uint16(bytes[6:8]))
}

func TestCodeStackTracking(t *testing.T) {
	cp := NewConstPool()
	code := NewCode(cp)

	code.Iconst(1)
	code.Iconst(2)
	assert.Equal(t, 2, code.maxStack)
	code.Ibinop(OpIadd)
	code.Ireturn()
	assert.Equal(t, 2, code.maxStack)
}

func TestCodeWideValuesCountTwoWords(t *testing.T) {
	cp := NewConstPool()
	code := NewCode(cp)

	code.Dconst(1.5)
	code.Dconst(2.5)
	code.Dbinop(OpDadd)
	code.Dreturn()
	assert.Equal(t, 4, code.maxStack)
}

func TestBranchPatching(t *testing.T) {
	cp := NewConstPool()
	code := NewCode(cp)

	code.Iconst(1)
	label := code.NewLabel()
	code.Branch(OpIfeq, label) // offsets 1..3 (iconst_1 is 1 byte)
	code.Iconst(0)
	code.Bind(label)

	branchAt := 1
	rel := int16(code.buf[branchAt+1])<<8 | int16(code.buf[branchAt+2])
	assert.Equal(t, label.offset-branchAt, int(rel), "jump offset is relative to the branch opcode")
}

func TestBackwardBranch(t *testing.T) {
	cp := NewConstPool()
	code := NewCode(cp)

	loop := code.NewLabel()
	code.Bind(loop)
	code.Iconst(1)
	code.Branch(OpIfne, loop)

	branchAt := loop.offset + 1
	rel := int16(code.buf[branchAt+1])<<8 | int16(code.buf[branchAt+2])
	assert.Negative(t, int(rel), "backward jumps encode a negative offset")
}

func TestShortFormLoads(t *testing.T) {
	cp := NewConstPool()
	code := NewCode(cp)

	code.SetLocal(0, IntVT())
	code.Iload(0)
	assert.Equal(t, byte(OpIload0), code.buf[0])

	code.SetLocal(5, IntVT())
	code.Iload(5)
	assert.Equal(t, byte(OpIload), code.buf[1])
	assert.Equal(t, byte(5), code.buf[2])
}

func TestMaxLocalsTracksWideSlots(t *testing.T) {
	cp := NewConstPool()
	code := NewCode(cp)

	code.SetLocal(0, IntVT())
	code.SetLocal(1, DoubleVT())
	assert.Equal(t, 3, code.MaxLocals())
}

func TestParseDescriptor(t *testing.T) {
	params, ret := parseDescriptor("(ILjava/lang/String;D)Ljava/util/List;")
	require.Len(t, params, 3)
	assert.Equal(t, byte(VtInteger), params[0].Tag)
	assert.Equal(t, "java/lang/String", params[1].Class)
	assert.Equal(t, byte(VtDouble), params[2].Tag)
	require.NotNil(t, ret)
	assert.Equal(t, "java/util/List", ret.Class)

	params, ret = parseDescriptor("()V")
	assert.Empty(t, params)
	assert.Nil(t, ret)
}

func TestInvokeInterfaceCountsArgWords(t *testing.T) {
	cp := NewConstPool()
	code := NewCode(cp)

	code.AconstNull()
	code.Dconst(1.0)
	code.InvokeInterface("java/util/function/DoubleFunction", "apply", "(D)Ljava/lang/Object;")

	// opcode, u2 index, count byte, zero byte
	count := code.buf[len(code.buf)-2]
	assert.Equal(t, byte(3), count, "receiver word plus two double words")
	assert.Equal(t, byte(0), code.buf[len(code.buf)-1])
}

func TestStackMapFramesOnlyForBranchTargets(t *testing.T) {
	cp := NewConstPool()
	code := NewCode(cp)

	target := code.NewLabel()
	unreferenced := code.NewLabel()
	code.Iconst(1)
	code.Branch(OpIfeq, target)
	code.Bind(unreferenced)
	code.Iconst(0)
	code.PopValue()
	code.Bind(target)
	code.Return()

	frames := code.referencedFrames()
	require.Len(t, frames, 1)
	assert.Equal(t, target.offset, frames[0].offset)
}

func TestBootstrapMethodsDeduplicated(t *testing.T) {
	cf := NewClassFile("Foo", "java/lang/Object", AccPublic)
	handle := cf.Pool().MethodHandle(RefInvokeStatic, cf.Pool().Methodref("O", "m", "()V"))
	args := []uint16{cf.Pool().Utf8("x")}

	first := cf.AddBootstrapMethod(handle, args)
	second := cf.AddBootstrapMethod(handle, args)
	assert.Equal(t, first, second)
}
