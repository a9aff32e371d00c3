package checksum

import "testing"

func TestSum(t *testing.T) {
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestOfStable(t *testing.T) {
	a, err := Of(map[string]int{"x": 1, "y": 2})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Of(map[string]int{"y": 2, "x": 1})
	if a != b {
		t.Error("map key order should not change the digest")
	}
	if _, err := Of(func() {}); err == nil {
		t.Error("unencodable value should fail")
	}
}
