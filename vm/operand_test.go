package vm

import "testing"

func TestOperandRoundTrip(t *testing.T) {
	for w := Word(0); w <= MaxOperand; w++ {
		got := DecodeOperand(w).Encode()
		if got != w {
			t.Fatalf("encode(decode(%d)) = %d, want %d", w, got, w)
		}
	}
}

func TestDecodeOperandChecked_Invalid(t *testing.T) {
	for _, w := range []Word{MaxOperand + 1, 0x8008, 0xFFFF, 0x9000} {
		if _, ok := DecodeOperandChecked(w); ok {
			t.Errorf("DecodeOperandChecked(%#x) = ok, want invalid", w)
		}
	}
}

func TestDecodeOperandChecked_Valid(t *testing.T) {
	lit, ok := DecodeOperandChecked(42)
	if !ok || lit.IsRegister() || lit.Value != 42 {
		t.Fatalf("DecodeOperandChecked(42) = %+v, %v", lit, ok)
	}

	reg, ok := DecodeOperandChecked(ModBase + 3)
	if !ok || !reg.IsRegister() || reg.RegisterIndex() != 3 {
		t.Fatalf("DecodeOperandChecked(ModBase+3) = %+v, %v", reg, ok)
	}
}

func TestOperandString(t *testing.T) {
	if Literal(5).String() != "5" {
		t.Errorf("Literal(5).String() = %q", Literal(5).String())
	}
	if Register(2).String() != "r2" {
		t.Errorf("Register(2).String() = %q", Register(2).String())
	}
}
