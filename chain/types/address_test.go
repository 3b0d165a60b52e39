package types

import "testing"

func TestHexToAddressRoundTrip(t *testing.T) {
	addr, err := HexToAddress("0x00000000000000000000000000000000000000ab")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if addr.Hex() != "0x00000000000000000000000000000000000000ab" {
		t.Errorf("unexpected hex %s", addr.Hex())
	}
}

func TestHexToAddressRejectsEmpty(t *testing.T) {
	if _, err := HexToAddress(""); err == nil {
		t.Error("expected error for empty address")
	}
}

func TestHexToAddressRejectsMissingPrefix(t *testing.T) {
	if _, err := HexToAddress("00000000000000000000000000000000000000ab"); err == nil {
		t.Error("expected error for missing 0x prefix")
	}
}

func TestHexToAddressRejectsWrongLength(t *testing.T) {
	if _, err := HexToAddress("0xab"); err == nil {
		t.Error("expected error for short address")
	}
}

func TestHexToAddressRejectsNonHex(t *testing.T) {
	if _, err := HexToAddress("0x" + "zz00000000000000000000000000000000000000"[:40]); err == nil {
		t.Error("expected error for non-hex characters")
	}
}

func TestHexToAddressAcceptsUppercasePrefix(t *testing.T) {
	if _, err := HexToAddress("0X00000000000000000000000000000000000000ab"); err != nil {
		t.Errorf("expected uppercase 0X prefix to be accepted, got %v", err)
	}
}

func TestNormalizeAddressLowercases(t *testing.T) {
	norm, err := NormalizeAddress("0x00000000000000000000000000000000000000AB")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if norm != "0x00000000000000000000000000000000000000ab" {
		t.Errorf("expected lower-case normalization, got %s", norm)
	}
}

func TestAddressEqualAndIsZero(t *testing.T) {
	a, _ := HexToAddress("0x000000000000000000000000000000000000000a")
	b, _ := HexToAddress("0x000000000000000000000000000000000000000a")
	if !a.Equal(b) {
		t.Error("expected equal addresses to compare equal")
	}
	if ZeroAddress.IsZero() != true {
		t.Error("expected ZeroAddress to be zero")
	}
	if a.IsZero() {
		t.Error("expected non-zero address not to be zero")
	}
}

func TestAddressJSONRoundTrip(t *testing.T) {
	addr, _ := HexToAddress("0x00000000000000000000000000000000000000ab")
	data, err := addr.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Address
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Equal(addr) {
		t.Error("expected JSON round trip to preserve address")
	}
}

func TestAddressUnmarshalJSONRejectsInvalid(t *testing.T) {
	var out Address
	if err := out.UnmarshalJSON([]byte(`"not-an-address"`)); err == nil {
		t.Error("expected unmarshal to reject an invalid address string")
	}
}

func TestHexToHashRoundTrip(t *testing.T) {
	h, err := HexToHash("0x" + "ab000000000000000000000000000000000000000000000000000000000000ff")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if h.Hex() != "0xab000000000000000000000000000000000000000000000000000000000000ff" {
		t.Errorf("unexpected hex %s", h.Hex())
	}
}

func TestHexToHashRejectsWrongLength(t *testing.T) {
	if _, err := HexToHash("0xab"); err == nil {
		t.Error("expected error for short hash")
	}
}

func TestPublicKeyToAddressStripsUncompressedPrefix(t *testing.T) {
	pub := make([]byte, 65)
	pub[0] = 0x04
	for i := 1; i < 65; i++ {
		pub[i] = byte(i)
	}
	withPrefix := PublicKeyToAddress(pub)
	withoutPrefix := PublicKeyToAddress(pub[1:])
	if withPrefix != withoutPrefix {
		t.Error("expected identical derived address regardless of 0x04 prefix presence")
	}
}

func TestKeccak256IsDeterministic(t *testing.T) {
	a := Keccak256([]byte("hello"))
	b := Keccak256([]byte("hello"))
	if string(a) != string(b) {
		t.Error("expected deterministic Keccak256 output")
	}
}

func TestKeccak256ConcatenatesArguments(t *testing.T) {
	joined := Keccak256([]byte("hel"), []byte("lo"))
	single := Keccak256([]byte("hello"))
	if string(joined) != string(single) {
		t.Error("expected Keccak256 to hash the concatenation of all arguments")
	}
}

func TestSHA256Deterministic(t *testing.T) {
	a := SHA256([]byte("data"))
	b := SHA256([]byte("data"))
	if string(a) != string(b) {
		t.Error("expected deterministic SHA256 output")
	}
}

func TestBytesToAddressTruncatesLeadingBytes(t *testing.T) {
	long := make([]byte, 32)
	for i := range long {
		long[i] = byte(i)
	}
	addr := BytesToAddress(long)
	if addr[0] != long[12] {
		t.Error("expected BytesToAddress to keep only the trailing 20 bytes")
	}
}

func TestBytesToAddressPadsShortInput(t *testing.T) {
	addr := BytesToAddress([]byte{0xaa})
	if addr[AddressLength-1] != 0xaa {
		t.Error("expected short input to be right-aligned")
	}
	for i := 0; i < AddressLength-1; i++ {
		if addr[i] != 0 {
			t.Error("expected leading bytes to be zero-padded")
		}
	}
}
