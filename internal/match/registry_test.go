package match

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	m, err := r.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(m.ID()) != codeLength || strings.ToUpper(m.ID()) != m.ID() {
		t.Fatalf("code %q is not %d upper-case characters", m.ID(), codeLength)
	}
	if m.Phase() != PhaseLobby {
		t.Fatalf("new match phase %q, want lobby", m.Phase())
	}

	got, err := r.Get(strings.ToLower(m.ID()))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != m {
		t.Fatalf("Get returned a different match")
	}
}

func TestRegistryUnknownCode(t *testing.T) {
	r := NewRegistry(nil)
	if _, err := r.Get("NOPE00"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("err = %v, want ErrMatchNotFound", err)
	}
}

func TestRegistryRetriesCollidingCodes(t *testing.T) {
	r := NewRegistry(nil)
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	r.newCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
	first, err := r.Create()
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := r.Create()
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if first.ID() != "AAAAAA" || second.ID() != "BBBBBB" {
		t.Fatalf("codes = %q, %q", first.ID(), second.ID())
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
}

func TestRandCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := randCode()
		if err != nil {
			t.Fatalf("randCode: %v", err)
		}
		for _, ch := range code {
			if !strings.ContainsRune(codeAlphabet, ch) {
				t.Fatalf("code %q has %q outside the alphabet", code, ch)
			}
		}
	}
}

func TestReadCodeDiscardsBiasedBytes(t *testing.T) {
	src := bytes.NewReader([]byte{252, 253, 254, 255, 0, 35, 36, 71, 72, 251, 1, 2})
	code, err := readCode(src)
	if err != nil {
		t.Fatalf("readCode: %v", err)
	}
	if code != "0Z0Z0Z" {
		t.Fatalf("code = %q, want 0Z0Z0Z", code)
	}

	exhausted := bytes.NewReader(bytes.Repeat([]byte{255}, 2*codeLength))
	if _, err := readCode(exhausted); err == nil {
		t.Fatalf("readCode accepted a source of only out-of-range bytes")
	}
}
