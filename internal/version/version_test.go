package version

import (
	"strings"
	"testing"
)

func TestString_ContainsNameAndVersion(t *testing.T) {
	t.Parallel()

	s := String()
	if !strings.Contains(s, "triagent") {
		t.Errorf("version string missing binary name: %q", s)
	}
	if !strings.Contains(s, Version) {
		t.Errorf("version string missing version value: %q", s)
	}
}
