package bitutil

import (
	"bytes"
	"testing"
)

func TestBitArrayGetSet(t *testing.T) {
	ba := NewBitArray(70)
	for i := 0; i < 70; i++ {
		if ba.Get(i) {
			t.Errorf("bit %d should not be set", i)
		}
	}
	ba.Set(0)
	ba.Set(63)
	ba.Set(64)
	if !ba.Get(0) || !ba.Get(63) || !ba.Get(64) {
		t.Error("bits should be set")
	}
	if ba.Get(1) || ba.Get(62) {
		t.Error("bits should not be set")
	}
}

func TestBitArrayFlip(t *testing.T) {
	ba := NewBitArray(8)
	ba.Flip(3)
	if !ba.Get(3) {
		t.Error("bit 3 should be set after flip")
	}
	ba.Flip(3)
	if ba.Get(3) {
		t.Error("bit 3 should be unset after double flip")
	}
}

func TestBitArrayAppendBit(t *testing.T) {
	var ba BitArray
	ba.AppendBit(true)
	ba.AppendBit(false)
	ba.AppendBit(true)
	if ba.Size() != 3 {
		t.Errorf("size = %d, want 3", ba.Size())
	}
	if !ba.Get(0) || ba.Get(1) || !ba.Get(2) {
		t.Error("incorrect bits after append")
	}
}

func TestBitArrayAppendBits(t *testing.T) {
	var ba BitArray
	ba.AppendBits(0x1E, 6) // 011110
	if ba.Size() != 6 {
		t.Fatalf("size = %d, want 6", ba.Size())
	}
	expected := []bool{false, true, true, true, true, false}
	for i, exp := range expected {
		if ba.Get(i) != exp {
			t.Errorf("bit %d = %v, want %v", i, ba.Get(i), exp)
		}
	}
}

func TestBitArrayBytes(t *testing.T) {
	var ba BitArray
	ba.AppendBits(0x4, 4)
	ba.AppendBits(0x0C, 8)
	ba.AppendBits(0x1, 1)
	got := ba.Bytes()
	want := []byte{0x40, 0xC8}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes() = %x, want %x", got, want)
	}
	if ba.SizeInBytes() != 2 {
		t.Errorf("SizeInBytes() = %d, want 2", ba.SizeInBytes())
	}
}

func TestBitArrayAppendBitArray(t *testing.T) {
	var a, b BitArray
	a.AppendBits(0x5, 3)
	b.AppendBits(0x3, 2)
	a.AppendBitArray(&b)
	if a.Size() != 5 {
		t.Fatalf("size = %d, want 5", a.Size())
	}
	if got := a.String(); got != " X.XXX" {
		t.Errorf("String() = %q", got)
	}
}

func TestBitArrayClone(t *testing.T) {
	ba := NewBitArray(16)
	ba.Set(5)
	clone := ba.Clone()
	clone.Set(10)
	if ba.Get(10) {
		t.Error("modifying clone should not affect original")
	}
	if !clone.Get(5) || !clone.Get(10) {
		t.Error("clone should have both bits set")
	}
}
