package bitreader

import "testing"

func TestReadBitsMSBFirst(t *testing.T) {
	r := New([]byte{0b10110010})

	v, err := r.ReadBits(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0b1011 {
		t.Errorf("high nibble: expect 0x%x, got 0x%x", 0b1011, v)
	}

	v, err = r.ReadBits(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0b0010 {
		t.Errorf("low nibble: expect 0x%x, got 0x%x", 0b0010, v)
	}
}

func TestReadBitsAcrossByteBoundary(t *testing.T) {
	r := New([]byte{0xFF, 0x00})

	if _, err := r.ReadBits(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := r.ReadBits(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0xF0 {
		t.Errorf("expect 0xf0, got 0x%x", v)
	}
}

func TestReadBitsShortRead(t *testing.T) {
	r := New([]byte{0x01})
	if _, err := r.ReadBits(9); err != ErrShortRead {
		t.Errorf("expect ErrShortRead, got %v", err)
	}
}

func TestBookmarkAndSeekAbsolute(t *testing.T) {
	r := New([]byte{0xAB, 0xCD, 0xEF})
	mark := r.Bookmark()

	if _, err := r.ReadBits(16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.SeekAbsolute(mark); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := r.ReadBits(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0xAB {
		t.Errorf("rewind did not restore cursor: expect 0xab, got 0x%x", v)
	}
}

func TestSeekRelativeRewindsOneByte(t *testing.T) {
	r := New([]byte{0x11, 0x22, 0x33})
	if _, err := r.ReadBytes(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.SeekRelative(-1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := r.ReadBytes(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b[0] != 0x22 {
		t.Errorf("expect 0x22, got 0x%x", b[0])
	}
}

func TestReadBytesChunksPastSixteen(t *testing.T) {
	buf := make([]byte, 100)
	for i := range buf {
		buf[i] = byte(i)
	}
	r := New(buf)

	out, err := r.ReadBytes(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, b := range out {
		if b != byte(i) {
			t.Fatalf("byte %d: expect 0x%x, got 0x%x", i, byte(i), b)
		}
	}
	if !r.End() {
		t.Errorf("expected cursor at end of buffer")
	}
}

func TestReadBytesRequiresByteAlignment(t *testing.T) {
	r := New([]byte{0xFF, 0xFF})
	if _, err := r.ReadBits(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.ReadBytes(1); err != ErrShortRead {
		t.Errorf("expect ErrShortRead on misaligned read, got %v", err)
	}
}

func TestPeekByteDoesNotAdvance(t *testing.T) {
	r := New([]byte{0x42, 0x43})
	b, ok := r.PeekByte()
	if !ok || b != 0x42 {
		t.Fatalf("expect (0x42, true), got (0x%x, %v)", b, ok)
	}
	v, err := r.ReadBits(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x42 {
		t.Errorf("peek advanced the cursor: expect 0x42, got 0x%x", v)
	}
}

func TestPeekByteAtEndOfStream(t *testing.T) {
	r := New([]byte{0x01})
	if _, err := r.ReadBits(8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.PeekByte(); ok {
		t.Errorf("expected PeekByte to fail at end of stream")
	}
}

func TestSkipBitsAndEnd(t *testing.T) {
	r := New([]byte{0x00, 0x00})
	if err := r.SkipBits(16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.End() {
		t.Errorf("expected End() after skipping all bits")
	}
	if err := r.SkipBits(1); err != ErrShortRead {
		t.Errorf("expect ErrShortRead past end, got %v", err)
	}
}
