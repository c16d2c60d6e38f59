package qtree

import "testing"

func testRegion() Region {
	return Region{NE: [2]float64{100, 100}, SW: [2]float64{0, 0}}
}

func TestNewBuilderRejectsBadInput(t *testing.T) {
	bad := Region{NE: [2]float64{0, 10}, SW: [2]float64{0, 0}}
	if _, err := NewBuilder(bad, 4, nil); err == nil {
		t.Error("expected an error for an invalid region")
	} else if CodeOf(err) != ErrCodeInvalidRegion {
		t.Errorf("got code %v, want ErrCodeInvalidRegion", CodeOf(err))
	}

	if _, err := NewBuilder(testRegion(), 0, nil); err == nil {
		t.Error("expected an error for a zero bucket size")
	} else if CodeOf(err) != ErrCodeInvalidBucketSize {
		t.Errorf("got code %v, want ErrCodeInvalidBucketSize", CodeOf(err))
	}
}

func TestInsertRejectsOutOfRegion(t *testing.T) {
	b, err := NewBuilder(testRegion(), 4, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	if err := b.Insert(Item{Value: 1, X: 200, Y: 50}); err == nil {
		t.Error("expected an error inserting outside the region")
	} else if CodeOf(err) != ErrCodeOutOfRegion {
		t.Errorf("got code %v, want ErrCodeOutOfRegion", CodeOf(err))
	}
}

func TestEmptyTree(t *testing.T) {
	b, err := NewBuilder(testRegion(), 4, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	tree, err := b.Finalize("")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if tree.Size() != 0 {
		t.Errorf("Size() = %d, want 0", tree.Size())
	}
	if tree.NInners() != 1 {
		t.Errorf("NInners() = %d, want 1 (just the root)", tree.NInners())
	}
	if tree.NLeafs() != 0 {
		t.Errorf("NLeafs() = %d, want 0", tree.NLeafs())
	}
	t.Logf("empty tree: %s", tree)
}

func TestOnePointPerQuadrantDoesNotSplit(t *testing.T) {
	b, err := NewBuilder(testRegion(), 2, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	items := []Item{
		{Value: 1, X: 10, Y: 10}, // SW
		{Value: 2, X: 90, Y: 90}, // NE
		{Value: 3, X: 10, Y: 90}, // NW
	}
	for _, it := range items {
		if err := b.Insert(it); err != nil {
			t.Fatalf("Insert(%+v): %v", it, err)
		}
	}

	stats := b.Stats()
	if stats.Items != 3 {
		t.Errorf("Stats().Items = %d, want 3", stats.Items)
	}
	t.Logf("builder stats: %s", stats)

	tree, err := b.Finalize("")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if tree.Size() != 3 {
		t.Errorf("Size() = %d, want 3", tree.Size())
	}
	// A bucket size of 2 with one item per quadrant should not require a
	// split: root stays the only inner node, with three leaves underneath.
	if tree.NInners() != 1 {
		t.Errorf("NInners() = %d, want 1", tree.NInners())
	}
	if tree.NLeafs() != 3 {
		t.Errorf("NLeafs() = %d, want 3", tree.NLeafs())
	}
}

func TestCoincidentPointsGrowBucketInsteadOfSplitting(t *testing.T) {
	b, err := NewBuilder(testRegion(), 2, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	for i := uint64(0); i < 10; i++ {
		if err := b.Insert(Item{Value: i, X: 50, Y: 50}); err != nil {
			t.Fatalf("Insert #%d: %v", i, err)
		}
	}

	stats := b.Stats()
	if stats.Leafs != 1 {
		t.Errorf("Leafs = %d, want 1 (coincident points must never split)", stats.Leafs)
	}
	if stats.Inners != 1 {
		t.Errorf("Inners = %d, want 1 (just the root)", stats.Inners)
	}

	tree, err := b.Finalize("")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if tree.Size() != 10 {
		t.Errorf("Size() = %d, want 10", tree.Size())
	}
}

func TestManyPointsForceDeepSplitting(t *testing.T) {
	b, err := NewBuilder(testRegion(), 2, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	n := 0
	for x := 1.0; x < 100; x += 3 {
		for y := 1.0; y < 100; y += 3 {
			if err := b.Insert(Item{Value: uint64(n), X: x, Y: y}); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			n++
		}
	}

	stats := b.Stats()
	t.Logf("after %d inserts: %s", n, stats)
	if stats.Items != uint64(n) {
		t.Errorf("Items = %d, want %d", stats.Items, n)
	}
	if stats.MaxDepth < 2 {
		t.Errorf("MaxDepth = %d, want at least 2 for a grid this dense", stats.MaxDepth)
	}
	if stats.Inners <= 1 {
		t.Errorf("Inners = %d, want more than just the root", stats.Inners)
	}
}
