package scope

import "testing"

func TestDeclareLocalAndGetLocationRegister(t *testing.T) {
	s := New(nil, false)
	if err := s.DeclareLocal("a"); err != nil {
		t.Fatal(err)
	}
	loc, err := s.GetLocation("a")
	if err != nil {
		t.Fatal(err)
	}
	if loc.StorageType != Register {
		t.Errorf("StorageType = %v, want Register", loc.StorageType)
	}
}

func TestDeclareArgumentOnWeakScopePanics(t *testing.T) {
	fn := New(nil, false)
	block := New(fn, true)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic declaring an argument on a weak scope")
		}
	}()
	block.DeclareArgument("x", 0)
}

func TestRedeclarationInSameScopeErrors(t *testing.T) {
	s := New(nil, false)
	if err := s.DeclareLocal("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeclareLocal("a"); err == nil {
		t.Fatal("expected redeclaration error")
	}
}

func TestTouchPromotesRegisterToContext(t *testing.T) {
	fn := New(nil, false)
	if err := fn.DeclareLocal("a"); err != nil {
		t.Fatal(err)
	}
	block := New(fn, true)

	if err := block.Touch("a", true); err != nil {
		t.Fatal(err)
	}

	loc, err := fn.GetLocation("a")
	if err != nil {
		t.Fatal(err)
	}
	if loc.StorageType != Context {
		t.Errorf("StorageType after Touch(moveToContext) = %v, want Context", loc.StorageType)
	}
}

func TestGetLocationAcrossNonWeakBoundaryIncrementsDepth(t *testing.T) {
	outer := New(nil, false)
	if err := outer.DeclareLocal("a"); err != nil {
		t.Fatal(err)
	}
	inner := New(outer, false)

	// simulate the resolve pass promoting "a" to context storage, as the
	// compiler would for a name captured by a nested function.
	if err := inner.Touch("a", true); err != nil {
		t.Fatal(err)
	}

	loc, err := inner.GetLocation("a")
	if err != nil {
		t.Fatal(err)
	}
	if loc.StorageType != Context {
		t.Fatalf("StorageType = %v, want Context", loc.StorageType)
	}
	if loc.ContextDescriptor.Depth != 1 {
		t.Errorf("Depth = %d, want 1", loc.ContextDescriptor.Depth)
	}
}

func TestGetLocationNotFoundErrors(t *testing.T) {
	s := New(nil, false)
	if _, err := s.GetLocation("missing"); err == nil {
		t.Fatal("expected an error for an undeclared name")
	}
}

func TestContextCount(t *testing.T) {
	outer := New(nil, false)
	if err := outer.DeclareLocal("a"); err != nil {
		t.Fatal(err)
	}
	if err := outer.DeclareLocal("b"); err != nil {
		t.Fatal(err)
	}
	inner := New(outer, false)
	if err := inner.Touch("a", true); err != nil {
		t.Fatal(err)
	}
	if got := outer.ContextCount(); got != 1 {
		t.Errorf("ContextCount() = %d, want 1", got)
	}
}
