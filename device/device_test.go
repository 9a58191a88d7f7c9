package device

import (
	"testing"
)

func TestLookup(t *testing.T) {
	dev, err := Lookup("XC7A35T", "-3")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if dev.String() != "xc7a35t-3" {
		t.Fatalf("unexpected device %s", dev)
	}
	if dev.PLL.Count != 5 {
		t.Fatalf("unexpected PLL count %d", dev.PLL.Count)
	}
	if dev.PLL.VCOMaxHz != 2133e6 {
		t.Fatalf("unexpected VCO max %g", dev.PLL.VCOMaxHz)
	}
	if err := dev.PLL.Validate(); err != nil {
		t.Fatalf("built-in metadata does not validate: %s", err)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("xc7z020", "1"); err == nil {
		t.Fatal("expected unknown part to fail")
	}
	if _, err := Lookup("xc7a35t", "4"); err == nil {
		t.Fatal("expected unknown speed grade to fail")
	}
}

func TestOverride(t *testing.T) {
	dev, err := Lookup("xc7a100t", "1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	pll := dev.PLL.Override(PLL{Count: 2, OutputDivider: Range{Max: 64}})
	if pll.Count != 2 {
		t.Fatalf("count not overridden: %d", pll.Count)
	}
	if pll.OutputDivider != (Range{1, 64}) {
		t.Fatalf("unexpected output divider range %s", pll.OutputDivider)
	}
	if pll.VCOMaxHz != dev.PLL.VCOMaxHz {
		t.Fatal("unset field was overridden")
	}
}

func TestValidate(t *testing.T) {
	dev, _ := Lookup("xc7a35t", "1")
	broken := dev.PLL
	broken.VCOMaxHz = broken.VCOMinHz
	if err := broken.Validate(); err == nil {
		t.Fatal("expected empty VCO range to be rejected")
	}
	broken = dev.PLL
	broken.InputDivider = Range{0, 4}
	if err := broken.Validate(); err == nil {
		t.Fatal("expected zero divider to be rejected")
	}
}
