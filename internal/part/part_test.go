package part

import "testing"

func TestSplitCoverage(t *testing.T) {
	cases := []struct{ n, p int }{
		{10, 1}, {10, 3}, {10, 10}, {5, 8}, {0, 4}, {101, 7}, {1, 1},
	}
	for _, tc := range cases {
		ranges := Split(tc.n, tc.p)
		if len(ranges) != tc.p {
			t.Fatalf("Split(%d,%d): got %d ranges", tc.n, tc.p, len(ranges))
		}

		total := 0
		next := 0
		minSize, maxSize := tc.n, 0
		for i, r := range ranges {
			if r.Lo != next {
				t.Errorf("Split(%d,%d): range %d starts at %d, want %d (not contiguous)",
					tc.n, tc.p, i, r.Lo, next)
			}
			if r.Hi < r.Lo {
				t.Errorf("Split(%d,%d): range %d inverted", tc.n, tc.p, i)
			}
			next = r.Hi
			total += r.Len()
			if r.Len() < minSize {
				minSize = r.Len()
			}
			if r.Len() > maxSize {
				maxSize = r.Len()
			}
		}
		if total != tc.n {
			t.Errorf("Split(%d,%d): sizes sum to %d", tc.n, tc.p, total)
		}
		if next != tc.n {
			t.Errorf("Split(%d,%d): last range ends at %d", tc.n, tc.p, next)
		}
		if maxSize-minSize > 1 {
			t.Errorf("Split(%d,%d): chunk sizes differ by %d", tc.n, tc.p, maxSize-minSize)
		}
	}
}

func TestSplitMoreWorkersThanAtoms(t *testing.T) {
	ranges := Split(3, 5)
	empty := 0
	for _, r := range ranges {
		if r.Empty() {
			empty++
		}
	}
	if empty != 2 {
		t.Errorf("Split(3,5): got %d empty ranges, want 2", empty)
	}
}
