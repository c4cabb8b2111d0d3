package vm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ---------------------------------------------------------------------------
// Value encoding: the persistence format for saved values
// ---------------------------------------------------------------------------
//
// Each value is a one-byte type tag followed by its payload:
//   - int:    8 bytes, little endian two's complement
//   - string: uint32 byte length, then the bytes
//   - array:  uint32 element count, then each element encoded recursively
//
// Pointers, class symbols and class objects refer to runtime identities
// that cannot be written, so Save rejects them.

var (
	// ErrUnserializable is returned by Save for values that refer to
	// runtime identities.
	ErrUnserializable = errors.New("usecode: value cannot be saved")
	// ErrUnknownTag is returned by Restore for an unrecognized type tag.
	ErrUnknownTag = errors.New("usecode: unknown value tag")
	// ErrTruncated is returned by Restore when the stream ends early.
	ErrTruncated = errors.New("usecode: truncated value")
	// ErrTooDeep is returned by Restore for arrays nested past maxDepth.
	ErrTooDeep = errors.New("usecode: arrays nested too deeply")
)

// maxPrealloc bounds how many elements Restore allocates up front from an
// untrusted count.
const maxPrealloc = 1 << 12

// maxDepth bounds array nesting on Restore.
const maxDepth = 256

// Save writes v to w. It fails with ErrUnserializable if v is, or
// contains, a pointer or class value, or a string or array too long for
// its uint32 length prefix. Nothing is written in that case.
func (v Value) Save(w io.Writer) error {
	if err := v.checkSavable(); err != nil {
		return err
	}
	enc := valueEncoder{w: w}
	enc.encode(v)
	return enc.err
}

func (v Value) checkSavable() error {
	switch v.typ {
	case IntType:
		return nil
	case StringType:
		return checkLen(v.typ, uint64(len(v.sval)))
	case ArrayType:
		if err := checkLen(v.typ, uint64(len(v.aval))); err != nil {
			return err
		}
		for i := range v.aval {
			if err := v.aval[i].checkSavable(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnserializable, v.typ)
	}
}

func checkLen(t ValueType, n uint64) error {
	if n > math.MaxUint32 {
		return fmt.Errorf("%w: %s of length %d", ErrUnserializable, t, n)
	}
	return nil
}

type valueEncoder struct {
	w   io.Writer
	buf [9]byte
	err error
}

func (e *valueEncoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *valueEncoder) encode(v Value) {
	e.buf[0] = byte(v.typ)
	switch v.typ {
	case IntType:
		binary.LittleEndian.PutUint64(e.buf[1:], uint64(v.ival))
		e.write(e.buf[:9])
	case StringType:
		binary.LittleEndian.PutUint32(e.buf[1:], uint32(len(v.sval)))
		e.write(e.buf[:5])
		e.write([]byte(v.sval))
	case ArrayType:
		binary.LittleEndian.PutUint32(e.buf[1:], uint32(len(v.aval)))
		e.write(e.buf[:5])
		for i := range v.aval {
			e.encode(v.aval[i])
		}
	}
}

// Restore replaces v with a value read from r. The old payload is released
// first; on failure v is left undefined and the error carries the stream
// offset where decoding stopped.
func (v *Value) Restore(r io.Reader) error {
	v.Release()
	dec := valueDecoder{r: r}
	res, err := dec.decode(0)
	if err != nil {
		return fmt.Errorf("restore at offset %d: %w", dec.off, err)
	}
	*v = res
	return nil
}

type valueDecoder struct {
	r   io.Reader
	off int64
	buf [8]byte
}

func (d *valueDecoder) read(n int) ([]byte, error) {
	got, err := io.ReadFull(d.r, d.buf[:n])
	d.off += int64(got)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return d.buf[:n], nil
}

func (d *valueDecoder) decode(depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, ErrTooDeep
	}
	tag, err := d.read(1)
	if err != nil {
		return Value{}, err
	}
	switch t := ValueType(tag[0]); t {
	case IntType:
		p, err := d.read(8)
		if err != nil {
			return Value{}, err
		}
		return FromInt(int64(binary.LittleEndian.Uint64(p))), nil

	case StringType:
		p, err := d.read(4)
		if err != nil {
			return Value{}, err
		}
		n := binary.LittleEndian.Uint32(p)
		if n > math.MaxInt32 {
			return Value{}, fmt.Errorf("usecode: string length %d too large", n)
		}
		s, err := d.readString(int(n))
		if err != nil {
			return Value{}, err
		}
		return FromString(s), nil

	case ArrayType:
		p, err := d.read(4)
		if err != nil {
			return Value{}, err
		}
		n := int(binary.LittleEndian.Uint32(p))
		elems := make([]Value, 0, min(n, maxPrealloc))
		for i := 0; i < n; i++ {
			e, err := d.decode(depth + 1)
			if err != nil {
				releaseAll(elems)
				return Value{}, err
			}
			elems = append(elems, e)
		}
		return Value{typ: ArrayType, aval: elems, defined: true}, nil

	default:
		return Value{}, fmt.Errorf("%w: %d", ErrUnknownTag, t)
	}
}

// readString reads n bytes in bounded chunks so a corrupt length cannot
// force a huge allocation before the stream runs out.
func (d *valueDecoder) readString(n int) (string, error) {
	buf := make([]byte, 0, min(n, maxPrealloc))
	chunk := make([]byte, min(n, maxPrealloc))
	for len(buf) < n {
		want := min(n-len(buf), len(chunk))
		got, err := io.ReadFull(d.r, chunk[:want])
		d.off += int64(got)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", ErrTruncated
			}
			return "", err
		}
		buf = append(buf, chunk[:want]...)
	}
	return string(buf), nil
}
