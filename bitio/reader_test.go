package bitio

import "testing"

func TestReadBitsLSBFirst(t *testing.T) {
	// 0b10110010 read LSB-first: bit0=0,bit1=1,bit2=0,bit3=0,bit4=1,bit5=1,bit6=0,bit7=1
	r := NewReader([]byte{0b10110010})
	want := []uint32{0, 1, 0, 0, 1, 1, 0, 1}
	for i, w := range want {
		got, err := r.ReadBit()
		if err != nil {
			t.Fatalf("bit %d: %v", i, err)
		}
		if got != w {
			t.Errorf("bit %d: got %d want %d", i, got, w)
		}
	}
}

func TestReadBitsAcrossBytes(t *testing.T) {
	// Low 12 bits across two bytes, LSB-first.
	r := NewReader([]byte{0xAB, 0xCD})
	got, err := r.ReadBits(12)
	if err != nil {
		t.Fatal(err)
	}
	want := uint32(0xAB) | uint32(0xD)<<8
	if got != want {
		t.Errorf("got %#x want %#x", got, want)
	}
}

func TestAlignToByte(t *testing.T) {
	r := NewReader([]byte{0xFF, 0xAA, 0xBB})
	if _, err := r.ReadBits(3); err != nil {
		t.Fatal(err)
	}
	r.AlignToByte()
	b, err := r.ReadAlignedBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0xAA || b[1] != 0xBB {
		t.Errorf("got %#x %#x", b[0], b[1])
	}
}

func TestAlignToByteNoOp(t *testing.T) {
	r := NewReader([]byte{0x11, 0x22})
	r.AlignToByte() // no bits consumed yet; must not skip a byte
	b, err := r.ReadAlignedBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0x11 || b[1] != 0x22 {
		t.Errorf("got %#x %#x", b[0], b[1])
	}
}

func TestReadUintAligned(t *testing.T) {
	r := NewReader([]byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	v, err := r.ReadUintAligned(4)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Errorf("got %d want 1", v)
	}
	v, err = r.ReadUintAligned(8)
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 {
		t.Errorf("got %d want 2", v)
	}
}

func TestSeek(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 0x42})
	r.Seek(3)
	b, err := r.ReadAlignedBytes(1)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0x42 {
		t.Errorf("got %#x", b[0])
	}
}

func TestTruncated(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.ReadBits(16); err != ErrTruncated {
		t.Errorf("got %v want ErrTruncated", err)
	}
}
