package deflate

import (
	"bytes"
	goflate "compress/flate"
	"math/rand/v2"
	"testing"

	"github.com/mjbarlow/deflatezip/bitio"
	"github.com/mjbarlow/deflatezip/huffman"
)

func TestStoredBlock(t *testing.T) {
	// A stored (uncompressed) block: BFINAL=1, BTYPE=00, LEN=5, NLEN=~LEN.
	raw := []byte{0x01, 0x05, 0x00, 0xFA, 0xFF, 'H', 'e', 'l', 'l', 'o'}
	got, err := Decode(bitio.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "Hello" {
		t.Errorf("got %q want %q", got, "Hello")
	}
}

func TestStoredBlockEmpty(t *testing.T) {
	// LEN == 0 is valid and produces no output.
	raw := []byte{0x01, 0x00, 0x00, 0xFF, 0xFF}
	got, err := Decode(bitio.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %q want empty", got)
	}
}

func TestFixedHuffmanSingleLiteral(t *testing.T) {
	// A fixed-Huffman block: BFINAL=1, BTYPE=01, a single literal then
	// end-of-block. Built with a huffman.Encoder over the RFC 1951 fixed
	// literal/length code lengths, rather than a hand-transcribed bit
	// string.
	lit := make([]int, 288)
	for i := 0; i < 144; i++ {
		lit[i] = 8
	}
	for i := 144; i < 256; i++ {
		lit[i] = 9
	}
	for i := 256; i < 280; i++ {
		lit[i] = 7
	}
	for i := 280; i < 288; i++ {
		lit[i] = 8
	}
	enc, err := huffman.NewEncoder(lit)
	if err != nil {
		t.Fatal(err)
	}

	w := bitio.NewWriter()
	w.WriteBits(1, 1) // BFINAL
	w.WriteBits(1, 2) // BTYPE = 01
	if err := enc.Encode(w, 'A'); err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(w, endBlock); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(bitio.NewReader(w.Finish()))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "A" {
		t.Errorf("got %q want %q", got, "A")
	}
}

func TestReservedBTypeIsFatal(t *testing.T) {
	w := bitio.NewWriter()
	w.WriteBits(1, 1) // BFINAL
	w.WriteBits(3, 2) // BTYPE = 11 reserved
	_, err := Decode(bitio.NewReader(w.Finish()))
	if err == nil {
		t.Fatal("expected an error for reserved BTYPE")
	}
}

func TestStoredLenNlenMismatchIsFatal(t *testing.T) {
	raw := []byte{0x01, 0x05, 0x00, 0x00, 0x00, 'H', 'e', 'l', 'l', 'o'}
	_, err := Decode(bitio.NewReader(raw))
	if err == nil {
		t.Fatal("expected an error for LEN/NLEN mismatch")
	}
}

func TestSelfOverlapRun(t *testing.T) {
	// Compress a long run with the standard library, then decode with ours;
	// exercises matches whose distance (2) is shorter than their length,
	// i.e. self-overlap, without hand-building bits.
	raw := bytes.Repeat([]byte("ab"), 200)
	compressed := stdlibCompress(raw)
	got, err := Decode(bitio.NewReader(compressed))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("mismatch: got %d bytes want %d", len(got), len(raw))
	}
}

func TestAgainstStdlibRandomData(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	raw := make([]byte, 50000)
	for i := range raw {
		raw[i] = byte(rng.IntN(256))
	}
	// Make it compressible: repeat chunks of it.
	raw = append(raw, raw[:20000]...)

	compressed := stdlibCompress(raw)
	got, err := Decode(bitio.NewReader(compressed))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("mismatch: got %d bytes want %d", len(got), len(raw))
	}
}

func TestDynamicHuffmanBlock(t *testing.T) {
	raw := []byte("Sphinx of black quartz, judge my vow. Pack my box with five dozen liquor jugs. How vexingly quick daft zebras jump! The five boxing wizards jump quickly. Jackdaws love my big sphinx of quartz.")
	compressed := stdlibCompressLevel(raw, goflate.BestCompression)
	if btype := compressed[0] >> 1 & 3; btype != 2 {
		t.Fatalf("first block BTYPE = %d, want 2 (dynamic Huffman)", btype)
	}
	got, err := Decode(bitio.NewReader(compressed))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("got %q want %q", got, raw)
	}
}

func stdlibCompress(b []byte) []byte {
	return stdlibCompressLevel(b, goflate.DefaultCompression)
}

func stdlibCompressLevel(b []byte, level int) []byte {
	dest := bytes.NewBuffer(nil)
	w, err := goflate.NewWriter(dest, level)
	if err != nil {
		panic(err)
	}
	if _, err := w.Write(b); err != nil {
		panic(err)
	}
	w.Close()
	return dest.Bytes()
}
