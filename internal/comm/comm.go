// Package comm runs a fixed-size group of worker ranks and gives them MPI
// style collectives: broadcast, scatter and gather, all blocking, all in
// rank order. The group size is fixed for the lifetime of a run; there is
// no dynamic join or leave.
//
// Message channels are dedicated per ordered rank pair, so as long as every
// rank issues the same sequence of collectives, matching is positional and
// a mismatch can only come from a contract violation (wrong chunk count,
// wrong payload type), which surfaces as ErrCollectiveMismatch.
package comm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/san-kum/lindblad/internal/dynamo"
)

// Group is a fixed-size process group.
type Group struct {
	size  int
	links [][]chan any // links[from][to]
}

// Comm is one rank's handle into its group.
type Comm struct {
	rank int
	g    *Group
}

func NewGroup(size int) (*Group, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: group size %d", dynamo.ErrInvalidConfiguration, size)
	}
	links := make([][]chan any, size)
	for from := range links {
		links[from] = make([]chan any, size)
		for to := range links[from] {
			links[from][to] = make(chan any, 1)
		}
	}
	return &Group{size: size, links: links}, nil
}

func (g *Group) Size() int { return g.size }

func (c *Comm) Rank() int { return c.rank }
func (c *Comm) Size() int { return c.g.size }

// Run executes fn once per rank, each on its own goroutine, and blocks
// until every rank returns. Per-rank errors are joined.
func (g *Group) Run(fn func(c *Comm) error) error {
	errs := make([]error, g.size)
	var wg sync.WaitGroup
	for rank := 0; rank < g.size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			errs[rank] = fn(&Comm{rank: rank, g: g})
		}(rank)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (c *Comm) send(to int, v any) {
	c.g.links[c.rank][to] <- v
}

func (c *Comm) recv(from int) any {
	return <-c.g.links[from][c.rank]
}

// Broadcast distributes root's value to every rank and returns it.
// Non-root ranks pass the zero value.
func Broadcast[T any](c *Comm, root int, v T) (T, error) {
	if c.rank == root {
		for r := 0; r < c.Size(); r++ {
			if r != root {
				c.send(r, v)
			}
		}
		return v, nil
	}
	got, ok := c.recv(root).(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: broadcast from rank %d to rank %d",
			dynamo.ErrCollectiveMismatch, root, c.rank)
	}
	return got, nil
}

// Scatter hands rank r the r-th chunk of root's table. Root must provide
// exactly one chunk per rank; non-root ranks pass nil.
func Scatter[T any](c *Comm, root int, chunks []T) (T, error) {
	var zero T
	if c.rank == root {
		if len(chunks) != c.Size() {
			return zero, fmt.Errorf("%w: scatter of %d chunks across %d ranks",
				dynamo.ErrCollectiveMismatch, len(chunks), c.Size())
		}
		for r := 0; r < c.Size(); r++ {
			if r != root {
				c.send(r, chunks[r])
			}
		}
		return chunks[root], nil
	}
	got, ok := c.recv(root).(T)
	if !ok {
		return zero, fmt.Errorf("%w: scatter from rank %d to rank %d",
			dynamo.ErrCollectiveMismatch, root, c.rank)
	}
	return got, nil
}

// Gather collects one value per rank at root, in rank order, independent of
// completion order. Non-root ranks receive nil.
func Gather[T any](c *Comm, root int, v T) ([]T, error) {
	if c.rank != root {
		c.send(root, v)
		return nil, nil
	}
	out := make([]T, c.Size())
	for r := 0; r < c.Size(); r++ {
		if r == root {
			out[r] = v
			continue
		}
		got, ok := c.recv(r).(T)
		if !ok {
			return nil, fmt.Errorf("%w: gather from rank %d at rank %d",
				dynamo.ErrCollectiveMismatch, r, root)
		}
		out[r] = got
	}
	return out, nil
}
