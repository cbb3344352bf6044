package capture

import (
	"encoding/hex"
	"testing"
)

func TestExtractSNI(t *testing.T) {
	clientHelloHex := "16030101270100012303037e184b2f1e8f7c7a0a7f6d4e8c9a2b5f3d7e9c0a1b2c3d4e5f6a7b8c9d0e1f2020e0e1e2e3e4e5e6e7e8e9eaebecedeeeff0f1f2f3f4f5f6f7f8f9fafbfcfdfeff003e130213031301c02cc030009fcca9cca8ccaac02bc02f009ec024c028006bc023c0270067c00ac0140039c009c0130033009d009c003d003c0035002f00ff0100009c000b000403000102000a000a0008001d001700190018002300000016000000170000000d002a0028040305030603080708080809080a080b080408050806040105010601030303010302040205020602002b00050403040303002d00020101003300260024001d00206d0e5f7a1b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0000000f000d00000a6769746875622e636f6d"

	clientHello, err := hex.DecodeString(clientHelloHex)
	if err != nil {
		t.Fatalf("failed to decode hex fixture: %v", err)
	}

	if got, want := ExtractSNI(clientHello), "github.com"; got != want {
		t.Errorf("ExtractSNI() = %q, want %q", got, want)
	}
}

func TestExtractSNI_NoExtension(t *testing.T) {
	noSNI := []byte{0x16, 0x03, 0x01, 0x00, 0x05, 0x01, 0x00, 0x00, 0x01, 0x03}
	if got := ExtractSNI(noSNI); got != "" {
		t.Errorf("expected empty SNI, got %q", got)
	}
}

func TestExtractSNI_NotHandshake(t *testing.T) {
	invalid := []byte{0x17, 0x03, 0x01, 0x00, 0x05}
	if got := ExtractSNI(invalid); got != "" {
		t.Errorf("expected empty SNI for a non-handshake record, got %q", got)
	}
}

func TestExtractSNI_Truncated(t *testing.T) {
	if got := ExtractSNI([]byte{0x16, 0x03, 0x01}); got != "" {
		t.Errorf("expected empty SNI for a truncated record, got %q", got)
	}
}

func TestIsValidHostname(t *testing.T) {
	cases := map[string]bool{
		"github.com":     true,
		"a.b.c.example":  true,
		"bad..host":      false,
		"":                false,
		"has space.com":  false,
	}
	for host, want := range cases {
		if got := isValidHostname([]byte(host)); got != want {
			t.Errorf("isValidHostname(%q) = %v, want %v", host, got, want)
		}
	}
}
