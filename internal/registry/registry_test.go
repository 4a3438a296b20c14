package registry

import "testing"

func sizes(int) int { return 16 }

func sum(a, b int64) int64 { return a + b }

func TestCreateOrGetCreatesOnce(t *testing.T) {
	r := New()
	a := r.CreateOrGet("cpu.load", 1, sizes, sum)
	b := r.CreateOrGet("cpu.load", 1, sizes, sum)

	if a != b {
		t.Fatalf("CreateOrGet returned different series for the same name")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}

func TestCreateOrGetIgnoresSubsequentParameters(t *testing.T) {
	r := New()
	first := r.CreateOrGet("requests", 1, sizes, sum)
	first.Part.Push(1, 10)

	r.CreateOrGet("requests", 500, sizes, func(a, b int64) int64 { return a })

	v, _, ok := first.Part.GreedyQuery(1)
	if !ok || v != 10 {
		t.Fatalf("re-registering an existing series replaced its DataPart")
	}
}

func TestGetAndGetByHandle(t *testing.T) {
	r := New()
	s := r.CreateOrGet("mem.used", 1, sizes, sum)

	byName, ok := r.Get("mem.used")
	if !ok || byName != s {
		t.Fatalf("Get(%q) did not return the registered series", "mem.used")
	}

	byHandle, err := r.GetByHandle(s.Handle)
	if err != nil {
		t.Fatalf("GetByHandle returned error: %v", err)
	}
	if byHandle != s {
		t.Fatalf("GetByHandle returned a different series")
	}
}

func TestGetByHandleUnknown(t *testing.T) {
	r := New()
	if _, err := r.GetByHandle("does-not-exist"); err == nil {
		t.Fatalf("GetByHandle for an unregistered handle did not error")
	}
}

func TestNamesListsAllRegisteredSeries(t *testing.T) {
	r := New()
	r.CreateOrGet("a", 1, sizes, sum)
	r.CreateOrGet("b", 1, sizes, sum)

	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("Names() returned %d entries, want 2", len(names))
	}
}
