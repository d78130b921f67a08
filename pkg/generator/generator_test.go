package generator

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerate_Length(t *testing.T) {
	for _, length := range []int{1, 4, 16, 32, 64} {
		password, err := Generate(Config{Length: length, Classes: AllClasses})
		if err != nil {
			t.Fatalf("Should not fail generating %d chars: %s", length, err)
		}
		if len(password) != length {
			t.Errorf("Password should be %d chars, got %d", length, len(password))
		}
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cases := []Config{
		{Length: 0, Classes: AllClasses},
		{Length: -1, Classes: AllClasses},
		{Length: 16, Classes: ClassSet{}},
	}

	for _, cfg := range cases {
		if _, err := Generate(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Config %+v should report ErrInvalidConfig, got: %v", cfg, err)
		}
	}
}

func TestGenerate_AlphabetMembership(t *testing.T) {
	alphabet := lowercase + digits

	for i := 0; i < 20; i++ {
		password, err := Generate(Config{Length: 16, Classes: ClassSet{Lower: true, Digit: true}})
		if err != nil {
			t.Fatalf("Should not fail generating: %s", err)
		}

		for _, c := range password {
			if !strings.ContainsRune(alphabet, c) {
				t.Errorf("Password %q should only contain lower+digit characters", password)
			}
		}
	}
}

func TestGenerate_ContainsEveryRequestedClass(t *testing.T) {
	for i := 0; i < 20; i++ {
		password, err := Generate(Config{Length: 16, Classes: AllClasses})
		if err != nil {
			t.Fatalf("Should not fail generating: %s", err)
		}

		if !strings.ContainsAny(password, lowercase) {
			t.Errorf("Password %q should contain a lowercase letter", password)
		}
		if !strings.ContainsAny(password, uppercase) {
			t.Errorf("Password %q should contain an uppercase letter", password)
		}
		if !strings.ContainsAny(password, digits) {
			t.Errorf("Password %q should contain a digit", password)
		}
		if !strings.ContainsAny(password, symbols) {
			t.Errorf("Password %q should contain a symbol", password)
		}
	}
}

func TestGenerate_ShorterThanClassCount(t *testing.T) {
	// A 2 char password cannot hold all 4 classes; it must still
	// generate and stay inside the pool.
	password, err := Generate(Config{Length: 2, Classes: AllClasses})
	if err != nil {
		t.Fatalf("Should not fail generating: %s", err)
	}
	if len(password) != 2 {
		t.Errorf("Password should be 2 chars, got %d", len(password))
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		password, err := Generate(Config{Length: 16, Classes: AllClasses})
		if err != nil {
			t.Fatalf("Should not fail generating: %s", err)
		}
		if seen[password] {
			t.Fatalf("Two generated passwords collided: %q", password)
		}
		seen[password] = true
	}
}

// zeroReader makes every bounded draw return 0, which is the smallest
// valid output and exercises the injectable source.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestGenerate_InjectableSource(t *testing.T) {
	gen := NewWithSource(zeroReader{})

	first, err := gen.Generate(Config{Length: 8, Classes: ClassSet{Lower: true}})
	if err != nil {
		t.Fatalf("Should not fail generating: %s", err)
	}

	second, err := gen.Generate(Config{Length: 8, Classes: ClassSet{Lower: true}})
	if err != nil {
		t.Fatalf("Should not fail generating: %s", err)
	}

	if first != second {
		t.Errorf("A deterministic source should generate deterministically: %q != %q", first, second)
	}
	if first != "aaaaaaaa" {
		t.Errorf("An all-zeroes source should pick the first alphabet character everywhere, got %q", first)
	}
}
