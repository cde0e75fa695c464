package value

import "testing"

func TestCompareStrings(t *testing.T) {
	a := Sortable{Kind: SortableString, S: "apple"}
	b := Sortable{Kind: SortableString, S: "banana"}
	if Compare(a, b) >= 0 {
		t.Fatalf("expected apple < banana")
	}
	if Compare(b, a) <= 0 {
		t.Fatalf("expected banana > apple")
	}
	if Compare(a, a) != 0 {
		t.Fatalf("expected apple == apple")
	}
}

func TestCompareNumbers(t *testing.T) {
	a := Sortable{Kind: SortableNumber, N: "3"}
	b := Sortable{Kind: SortableNumber, N: "10"}
	if Compare(a, b) >= 0 {
		t.Fatalf("expected numeric 3 < 10, not lexicographic")
	}
}

func TestCompareNumbersParseFailureIsEqual(t *testing.T) {
	a := Sortable{Kind: SortableNumber, N: "not-a-number"}
	b := Sortable{Kind: SortableNumber, N: "42"}
	if Compare(a, b) != 0 {
		t.Fatalf("expected parse failure to compare equal, not panic")
	}
}

func TestCompareBinary(t *testing.T) {
	a := Sortable{Kind: SortableBinary, B: []byte{0x01}}
	b := Sortable{Kind: SortableBinary, B: []byte{0x02}}
	if Compare(a, b) >= 0 {
		t.Fatalf("expected binary 0x01 < 0x02")
	}
}

func TestFromAttributeValueRejectsCompoundTypes(t *testing.T) {
	_, err := FromAttributeValue("attr", List(nil))
	if err == nil {
		t.Fatalf("expected InvalidKeyType error for list")
	}
	var ik *ErrInvalidKeyType
	if !isInvalidKeyType(err, &ik) {
		t.Fatalf("expected *ErrInvalidKeyType, got %T", err)
	}
}

func isInvalidKeyType(err error, target **ErrInvalidKeyType) bool {
	e, ok := err.(*ErrInvalidKeyType)
	if ok {
		*target = e
	}
	return ok
}

func TestIncrementPrefix(t *testing.T) {
	upper, ok := IncrementPrefix([]byte("x"))
	if !ok || string(upper) != "y" {
		t.Fatalf("expected 'y', got %q ok=%v", upper, ok)
	}

	_, ok = IncrementPrefix([]byte{0xFF, 0xFF})
	if ok {
		t.Fatalf("expected no upper bound for all-0xFF prefix")
	}

	_, ok = IncrementPrefix(nil)
	if ok {
		t.Fatalf("expected no upper bound for empty prefix")
	}

	upper, ok = IncrementPrefix([]byte{0x01, 0xFF})
	if !ok || len(upper) != 1 || upper[0] != 0x02 {
		t.Fatalf("expected trailing 0xFF dropped and prior byte incremented, got %x", upper)
	}
}

func TestNoSortKeySentinelIsSingleEquivalenceClass(t *testing.T) {
	if Compare(NoSortKey, NoSortKey) != 0 {
		t.Fatalf("sentinel must compare equal to itself")
	}
}
