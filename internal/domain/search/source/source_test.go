package source

import "testing"

func TestIsValid(t *testing.T) {
	for _, s := range []Source{Provider, Local, Blended} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}

	for _, s := range []Source{"", "remote", "PROVIDER"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
