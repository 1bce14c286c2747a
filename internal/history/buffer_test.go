package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuffer_EvictsOldest(t *testing.T) {
	b := New[int](3)
	for _, v := range []int{1, 2, 3, 4} {
		b.Push(v)
	}

	if diff := cmp.Diff([]int{2, 3, 4}, b.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if b.Len() != 3 {
		t.Fatalf("expected len 3, got %d", b.Len())
	}
}

func TestBuffer_LenNeverExceedsCap(t *testing.T) {
	for capacity := 1; capacity <= 8; capacity++ {
		b := New[int](capacity)
		for i := range 50 {
			b.Push(i)
			if b.Len() > b.Cap() {
				t.Fatalf("cap %d: len %d exceeds capacity", capacity, b.Len())
			}
		}
		got := b.Values()
		if len(got) != capacity {
			t.Fatalf("cap %d: expected %d values, got %d", capacity, capacity, len(got))
		}
		for i, v := range got {
			if want := 50 - capacity + i; v != want {
				t.Fatalf("cap %d: values[%d] = %d, want %d", capacity, i, v, want)
			}
		}
	}
}

func TestBuffer_ValuesIsCopy(t *testing.T) {
	b := New[int](2)
	b.Push(1)
	vals := b.Values()
	vals[0] = 99

	if v, _ := b.At(0); v != 1 {
		t.Fatalf("buffer mutated through Values copy: %d", v)
	}
}

func TestBuffer_SetAndIndexFunc(t *testing.T) {
	b := New[string](3)
	for _, v := range []string{"a", "b", "c", "d"} {
		b.Push(v)
	}

	i := b.IndexFunc(func(s string) bool { return s == "c" })
	if i != 1 {
		t.Fatalf("expected index 1, got %d", i)
	}
	if !b.Set(i, "C") {
		t.Fatal("expected Set to succeed")
	}
	if diff := cmp.Diff([]string{"b", "C", "d"}, b.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if b.IndexFunc(func(s string) bool { return s == "a" }) != -1 {
		t.Fatal("expected evicted element to be absent")
	}
	if b.Set(3, "x") {
		t.Fatal("expected out of range Set to fail")
	}
}

func TestBuffer_LastAndReset(t *testing.T) {
	b := New[int](0)
	if _, ok := b.Last(); ok {
		t.Fatal("expected empty buffer to have no last element")
	}
	b.Push(7)
	b.Push(8)
	if v, ok := b.Last(); !ok || v != 8 {
		t.Fatalf("expected last 8, got %d (ok=%v)", v, ok)
	}
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("expected empty after reset, got %d", b.Len())
	}
}
