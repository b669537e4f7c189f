package scope

import "testing"

func TestStoreLocalAssignsDenseIndices(t *testing.T) {
	r := NewRegisterShape()
	if err := r.StoreLocal("a"); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreLocal("b"); err != nil {
		t.Fatal(err)
	}
	if r.Index("a") != 0 || r.Index("b") != 1 {
		t.Errorf("Index(a)=%d Index(b)=%d, want 0, 1", r.Index("a"), r.Index("b"))
	}
	if r.RegistersCount() != 2 {
		t.Errorf("RegistersCount() = %d, want 2", r.RegistersCount())
	}
}

func TestStoreArgumentNegativeEncoding(t *testing.T) {
	r := NewRegisterShape()
	if err := r.StoreArgument("x", 0); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreArgument("y", 1); err != nil {
		t.Fatal(err)
	}
	if r.Index("x") != -1 || r.Index("y") != -2 {
		t.Errorf("Index(x)=%d Index(y)=%d, want -1, -2", r.Index("x"), r.Index("y"))
	}
	if r.ArgumentsCount() != 2 {
		t.Errorf("ArgumentsCount() = %d, want 2", r.ArgumentsCount())
	}
}

func TestStoreLocalRedeclarationErrors(t *testing.T) {
	r := NewRegisterShape()
	if err := r.StoreLocal("a"); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreLocal("a"); err == nil {
		t.Fatal("expected an error redeclaring a local")
	}
}

func TestRemoveNameShiftsLaterLocals(t *testing.T) {
	r := NewRegisterShape()
	r.StoreLocal("a")
	r.StoreLocal("b")
	r.StoreLocal("c")
	r.RemoveName("a")
	if r.Index("b") != 0 || r.Index("c") != 1 {
		t.Errorf("after removing a: Index(b)=%d Index(c)=%d, want 0, 1", r.Index("b"), r.Index("c"))
	}
	if r.RegistersCount() != 2 {
		t.Errorf("RegistersCount() = %d, want 2", r.RegistersCount())
	}
}

func TestLockAndReleaseRegistersReusesGaps(t *testing.T) {
	r := NewRegisterShape()
	r.StoreLocal("a")

	first := r.LockRegisters(2)
	if first.First != 1 || first.Count != 2 {
		t.Fatalf("first = %+v, want {1 2}", first)
	}
	r.ReleaseRegisters(first)

	second := r.LockRegisters(2)
	if second.First != first.First || second.Count != 2 {
		t.Errorf("second = %+v, want reuse of %+v", second, first)
	}
}

func TestDeclareAndIsDeclared(t *testing.T) {
	r := NewRegisterShape()
	r.StoreLocal("a")
	if r.IsDeclared("a") {
		t.Fatal("a should not be declared yet")
	}
	r.Declare("a")
	if !r.IsDeclared("a") {
		t.Fatal("a should be declared after Declare")
	}
}
