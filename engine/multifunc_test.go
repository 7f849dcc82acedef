package engine

import "testing"

func TestMultifuncList_PushGetErase_FIFOOrder(t *testing.T) {
	// GIVEN an empty table
	m := NewMultifuncList[string, int](0, 1)

	// WHEN three keys are pushed to the back
	if err := m.PushBack("a", 1); err != nil {
		t.Fatalf("push a: %v", err)
	}
	if err := m.PushBack("b", 2); err != nil {
		t.Fatalf("push b: %v", err)
	}
	if err := m.PushBack("c", 3); err != nil {
		t.Fatalf("push c: %v", err)
	}

	// THEN Front/Back and FIFO drain order are preserved
	if k, v, ok := m.Front(); !ok || k != "a" || v != 1 {
		t.Fatalf("front = %v,%v,%v, want a,1,true", k, v, ok)
	}
	if k, v, ok := m.Back(); !ok || k != "c" || v != 3 {
		t.Fatalf("back = %v,%v,%v, want c,3,true", k, v, ok)
	}
	if v, ok := m.Get("b"); !ok || v != 2 {
		t.Fatalf("get b = %v,%v, want 2,true", v, ok)
	}

	k, v, ok := m.PopFront()
	if !ok || k != "a" || v != 1 {
		t.Fatalf("pop front = %v,%v,%v, want a,1,true", k, v, ok)
	}
	if m.Size() != 2 {
		t.Fatalf("size after pop = %d, want 2", m.Size())
	}
}

func TestMultifuncList_PushBack_DuplicateKeyErrors(t *testing.T) {
	m := NewMultifuncList[string, int](0, 1)
	_ = m.PushBack("a", 1)
	if err := m.PushBack("a", 2); err == nil {
		t.Fatal("expected error pushing duplicate key")
	}
}

func TestMultifuncList_Full_UnboundedNeverFull(t *testing.T) {
	m := NewMultifuncList[int, int](0, 1)
	for i := 0; i < 100; i++ {
		_ = m.PushBack(i, i)
	}
	if m.Full() {
		t.Fatal("unbounded (capacity<=0) table should never report full")
	}
}

func TestMultifuncList_Full_CapacityEnforced(t *testing.T) {
	m := NewMultifuncList[int, int](2, 1)
	_ = m.PushBack(1, 1)
	if m.Full() {
		t.Fatal("should not be full at 1/2")
	}
	_ = m.PushBack(2, 2)
	if !m.Full() {
		t.Fatal("should be full at 2/2")
	}
}

func TestMultifuncList_GetRand_Deterministic(t *testing.T) {
	a := NewMultifuncList[int, int](0, 42)
	b := NewMultifuncList[int, int](0, 42)
	for i := 0; i < 10; i++ {
		_ = a.PushBack(i, i)
		_ = b.PushBack(i, i)
	}
	ka, _, _ := a.GetRand()
	kb, _, _ := b.GetRand()
	if ka != kb {
		t.Fatalf("same seed should yield same random pick: %d != %d", ka, kb)
	}
}

func TestMultifuncList_KickoutRand_RemovesOneEntry(t *testing.T) {
	m := NewMultifuncList[int, int](0, 7)
	for i := 0; i < 5; i++ {
		_ = m.PushBack(i, i)
	}
	if !m.KickoutRand() {
		t.Fatal("kickout on non-empty table should succeed")
	}
	if m.Size() != 4 {
		t.Fatalf("size after kickout = %d, want 4", m.Size())
	}
}

func TestMultifuncList_Insert_AtMiddlePosition(t *testing.T) {
	m := NewMultifuncList[string, int](0, 1)
	_ = m.PushBack("a", 1)
	_ = m.PushBack("b", 2)
	_ = m.PushBack("c", 3)

	if err := m.Insert(1, "x", 99); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var order []string
	for {
		k, _, ok := m.PopFront()
		if !ok {
			break
		}
		order = append(order, k)
	}
	want := []string{"a", "x", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestMultifuncList_Insert_PosClampedToFrontAndBack(t *testing.T) {
	m := NewMultifuncList[string, int](0, 1)
	_ = m.PushBack("a", 1)
	_ = m.PushBack("b", 2)

	if err := m.Insert(-5, "front", 1); err != nil {
		t.Fatalf("insert front: %v", err)
	}
	if err := m.Insert(100, "back", 1); err != nil {
		t.Fatalf("insert back: %v", err)
	}

	if k, _, _ := m.Front(); k != "front" {
		t.Fatalf("front = %v, want front", k)
	}
	if k, _, _ := m.Back(); k != "back" {
		t.Fatalf("back = %v, want back", k)
	}
}

func TestMultifuncList_Insert_DuplicateKeyErrors(t *testing.T) {
	m := NewMultifuncList[string, int](0, 1)
	_ = m.PushBack("a", 1)
	if err := m.Insert(0, "a", 2); err == nil {
		t.Fatal("expected error inserting duplicate key")
	}
}

func TestMultifuncList_MoveToFrontAndErase(t *testing.T) {
	m := NewMultifuncList[string, int](0, 1)
	_ = m.PushBack("a", 1)
	_ = m.PushBack("b", 2)
	_ = m.PushBack("c", 3)

	if !m.MoveToFront("c") {
		t.Fatal("move to front should succeed for present key")
	}
	if k, _, _ := m.Front(); k != "c" {
		t.Fatalf("front after MoveToFront = %v, want c", k)
	}

	if !m.Erase("b") {
		t.Fatal("erase should succeed for present key")
	}
	if m.Hit("b") {
		t.Fatal("b should no longer be present after erase")
	}
	if m.Size() != 2 {
		t.Fatalf("size after erase = %d, want 2", m.Size())
	}
}
