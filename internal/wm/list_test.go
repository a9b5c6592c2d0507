package wm

import "testing"

func TestOrderedListAppendRemove(t *testing.T) {
	var l OrderedList[ClientID]
	if l.Len() != 0 {
		t.Fatalf("expected empty list, got len %d", l.Len())
	}
	l.Append(1)
	l.Append(2)
	l.Append(3)
	if !l.Contains(2) {
		t.Fatal("expected list to contain 2")
	}
	if !l.Remove(2) {
		t.Fatal("expected Remove(2) to report found")
	}
	if l.Contains(2) {
		t.Fatal("expected 2 to be gone after Remove")
	}
	if l.Remove(2) {
		t.Fatal("expected second Remove(2) to report not found")
	}
	if got := l.Items(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected items after remove: %v", got)
	}
}

func TestOrderedListNextPrevWrap(t *testing.T) {
	var l OrderedList[ClientID]
	l.Append(1)
	l.Append(2)
	l.Append(3)

	noSkip := func(ClientID) bool { return false }

	next, ok := l.Next(3, noSkip)
	if !ok || next != 1 {
		t.Fatalf("expected Next(3) to wrap to 1, got %v ok=%v", next, ok)
	}
	prev, ok := l.Prev(1, noSkip)
	if !ok || prev != 3 {
		t.Fatalf("expected Prev(1) to wrap to 3, got %v ok=%v", prev, ok)
	}
}

func TestOrderedListNextSkipsPredicate(t *testing.T) {
	var l OrderedList[ClientID]
	l.Append(1)
	l.Append(2)
	l.Append(3)

	skipTwo := func(id ClientID) bool { return id == 2 }
	next, ok := l.Next(1, skipTwo)
	if !ok || next != 3 {
		t.Fatalf("expected Next(1) to skip 2 and land on 3, got %v ok=%v", next, ok)
	}
}

func TestOrderedListNextAbsentElement(t *testing.T) {
	var l OrderedList[ClientID]
	l.Append(1)
	if _, ok := l.Next(99, nil); ok {
		t.Fatal("expected Next on absent element to fail")
	}
}

func TestOrderedListSingleElementNoMatch(t *testing.T) {
	var l OrderedList[ClientID]
	l.Append(1)
	if _, ok := l.Next(1, nil); ok {
		t.Fatal("expected Next on a single-element list to find nothing but itself")
	}
}
