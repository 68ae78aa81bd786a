package extract

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseMethod(t *testing.T) {
	for _, m := range Methods() {
		parsed, err := ParseMethod(string(m))
		if err != nil {
			t.Errorf("ParseMethod(%q) failed: %v", m, err)
		}
		if parsed != m {
			t.Errorf("ParseMethod(%q) = %q", m, parsed)
		}
	}
}

func TestParseMethodUnknown(t *testing.T) {
	_, err := ParseMethod("carrier_pigeon")
	if !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func ExampleParseMethod() {
	method, _ := ParseMethod("claude_vision")
	fmt.Println(method)
	// Output: claude_vision
}
