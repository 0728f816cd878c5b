package huffman

import (
	"testing"

	"github.com/mjbarlow/deflatezip/bitio"
)

func TestCanonicalAssignmentExample(t *testing.T) {
	// lengths [3,3,3,3,3,2,4,4].
	// Sorted by (length, symbol): 5(2), 0(3), 1(3), 2(3), 3(3), 4(3), 6(4), 7(4)
	// MSB-first: 5->00, 0->010, 1->011, 2->100, 3->101, 4->110, 6->1110, 7->1111
	lengths := []int{3, 3, 3, 3, 3, 2, 4, 4}
	codes, outLengths, maxLen, ok := canonicalAssignment(lengths)
	if !ok {
		t.Fatal("expected a complete code")
	}
	if maxLen != 4 {
		t.Fatalf("maxLen = %d, want 4", maxLen)
	}
	want := map[int]uint32{5: 0b00, 0: 0b010, 1: 0b011, 2: 0b100, 3: 0b101, 4: 0b110, 6: 0b1110, 7: 0b1111}
	for sym, w := range want {
		if outLengths[sym] != lengths[sym] {
			t.Errorf("symbol %d: length %d, want %d", sym, outLengths[sym], lengths[sym])
		}
		if codes[sym] != w {
			t.Errorf("symbol %d: code %03b, want %03b", sym, codes[sym], w)
		}
	}
}

func TestReverseBitsIsSelfInverse(t *testing.T) {
	for n := 1; n <= 15; n++ {
		for x := uint32(0); x < 1<<uint(n); x++ {
			if got := reverseBits(reverseBits(x, n), n); got != x {
				t.Fatalf("n=%d x=%d: reverse(reverse(x))=%d", n, x, got)
			}
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	lengths := []int{3, 3, 3, 3, 3, 2, 4, 4}
	enc, err := NewEncoder(lengths)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := NewDecoder(lengths)
	if err != nil {
		t.Fatal(err)
	}

	w := bitio.NewWriter()
	seq := []int{0, 1, 2, 3, 4, 5, 6, 7, 5, 5, 7}
	for _, sym := range seq {
		if err := enc.Encode(w, sym); err != nil {
			t.Fatal(err)
		}
	}
	r := bitio.NewReader(w.Finish())
	for i, want := range seq {
		got, err := dec.Decode(r)
		if err != nil {
			t.Fatalf("symbol %d: %v", i, err)
		}
		if got != want {
			t.Errorf("symbol %d: got %d want %d", i, got, want)
		}
	}
}

func TestZeroLengthNeverEmittedOrDecoded(t *testing.T) {
	lengths := []int{2, 0, 2, 2, 2}
	enc, err := NewEncoder(lengths)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(bitio.NewWriter(), 1); err == nil {
		t.Fatal("expected ErrSymbolNotAssigned for absent symbol")
	}
}

func TestBitCost(t *testing.T) {
	lengths := []int{3, 3, 3, 3, 3, 2, 4, 4}
	enc, err := NewEncoder(lengths)
	if err != nil {
		t.Fatal(err)
	}
	cost, err := enc.BitCost([]SymbolCount{{Symbol: 5, Count: 10}, {Symbol: 7, Count: 2}})
	if err != nil {
		t.Fatal(err)
	}
	want := int64(10*2 + 2*4)
	if cost != want {
		t.Errorf("cost = %d, want %d", cost, want)
	}
}

func TestMalformedLengthsRejected(t *testing.T) {
	// Under-subscribed: two length-1 codes would be complete, but a single
	// length-2 code alone leaves three quarters of the space unassigned.
	if _, err := NewEncoder([]int{2}); err != ErrMalformed {
		t.Errorf("got %v, want ErrMalformed", err)
	}
	if _, err := NewDecoder([]int{2}); err != ErrMalformed {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestDegenerateSingleSymbolCode(t *testing.T) {
	enc, err := NewEncoder([]int{1})
	if err != nil {
		t.Fatal(err)
	}
	dec, err := NewDecoder([]int{1})
	if err != nil {
		t.Fatal(err)
	}
	w := bitio.NewWriter()
	if err := enc.Encode(w, 0); err != nil {
		t.Fatal(err)
	}
	got, err := dec.Decode(bitio.NewReader(w.Finish()))
	if err != nil || got != 0 {
		t.Fatalf("got %d,%v want 0,nil", got, err)
	}
}

func TestEmptyTreeDecodeFails(t *testing.T) {
	dec, err := NewDecoder([]int{0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dec.Decode(bitio.NewReader([]byte{0xFF})); err != ErrMalformed {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestLengthsFromRanges(t *testing.T) {
	ranges := []CodeRange{{0, 2}, {3, 3}, {5, 0}, {8, 1}, {10, 0}}
	got := LengthsFromRanges(ranges)
	want := []int{2, 2, 2, 3, 3, 0, 0, 0, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestLengthsFromDense(t *testing.T) {
	got := LengthsFromDense([]int{1, 2, 3, -1, 9, 9})
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	lengths := []int{3, 3, 3, 3, 3, 2, 4, 4}
	c1, l1, _, _ := canonicalAssignment(lengths)
	c2, l2, _, _ := canonicalAssignment(lengths)
	for i := range lengths {
		if c1[i] != c2[i] || l1[i] != l2[i] {
			t.Fatalf("nondeterministic assignment at symbol %d", i)
		}
	}
}
