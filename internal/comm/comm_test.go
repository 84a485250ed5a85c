package comm

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/san-kum/lindblad/internal/dynamo"
)

func TestBroadcast(t *testing.T) {
	g, err := NewGroup(4)
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	err = g.Run(func(c *Comm) error {
		v := ""
		if c.Rank() == 0 {
			v = "params"
		}
		got, err := Broadcast(c, 0, v)
		if err != nil {
			return err
		}
		if got != "params" {
			t.Errorf("rank %d got %q", c.Rank(), got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestScatterGatherRankOrder(t *testing.T) {
	g, _ := NewGroup(3)
	err := g.Run(func(c *Comm) error {
		var chunks [][]int
		if c.Rank() == 0 {
			chunks = [][]int{{0, 1}, {2, 3}, {4}}
		}
		local, err := Scatter(c, 0, chunks)
		if err != nil {
			return err
		}

		// Stagger completion so gather order cannot depend on timing.
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)

		sum := 0
		for _, v := range local {
			sum += v
		}
		sums, err := Gather(c, 0, sum)
		if err != nil {
			return err
		}
		if c.Rank() == 0 {
			want := []int{1, 5, 4}
			for i := range want {
				if sums[i] != want[i] {
					t.Errorf("gathered sums = %v, want %v", sums, want)
					break
				}
			}
		} else if sums != nil {
			t.Errorf("rank %d received a gather result", c.Rank())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestScatterChunkCountMismatch(t *testing.T) {
	g, _ := NewGroup(2)
	err := g.Run(func(c *Comm) error {
		var chunks [][]int
		if c.Rank() == 0 {
			chunks = [][]int{{1}} // one chunk for two ranks
			_, err := Scatter(c, 0, chunks)
			return err
		}
		// Rank 1 never receives; nothing to do.
		return nil
	})
	if !errors.Is(err, dynamo.ErrCollectiveMismatch) {
		t.Fatalf("expected ErrCollectiveMismatch, got %v", err)
	}
}

func TestRunJoinsErrors(t *testing.T) {
	g, _ := NewGroup(3)
	boom := errors.New("boom")
	err := g.Run(func(c *Comm) error {
		if c.Rank() == 1 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined worker error, got %v", err)
	}
}

func TestNewGroupInvalidSize(t *testing.T) {
	if _, err := NewGroup(0); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}
