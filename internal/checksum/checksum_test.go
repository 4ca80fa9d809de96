package checksum

import "testing"

func TestSum(t *testing.T) {
	// SHA-256 of the empty string.
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %q, want %q", got, empty)
	}
}

func TestOf(t *testing.T) {
	a, err := Of(map[string]any{"last_updated": "x", "steps": []int{1, 2}})
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	b, _ := Of(map[string]any{"steps": []int{1, 2}, "last_updated": "x"})
	if a != b {
		t.Error("equal values produced different digests")
	}
	c, _ := Of(map[string]any{"last_updated": "y", "steps": []int{1, 2}})
	if a == c {
		t.Error("different values produced equal digests")
	}
	if _, err := Of(make(chan int)); err == nil {
		t.Error("expected error for unencodable value")
	}
}
