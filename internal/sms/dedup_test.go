package sms

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkProcessedFirstTimeOnly(t *testing.T) {
	c := NewDedupCache(10)

	assert.True(t, c.MarkProcessed("g-1"))
	assert.False(t, c.MarkProcessed("g-1"))
	assert.True(t, c.MarkProcessed("g-2"))
	assert.False(t, c.MarkProcessed("g-2"))
	assert.False(t, c.MarkProcessed("g-1"))
}

func TestFIFOEviction(t *testing.T) {
	c := NewDedupCache(3)

	c.MarkProcessed("a")
	c.MarkProcessed("b")
	c.MarkProcessed("c")

	// "d" evicts "a", the oldest entry
	assert.True(t, c.MarkProcessed("d"))
	assert.True(t, c.MarkProcessed("a"), "evicted guid is treated as new")
	assert.False(t, c.MarkProcessed("c"), "still within window")
}

func TestReset(t *testing.T) {
	c := NewDedupCache(10)

	c.MarkProcessed("g-1")
	c.Reset()

	assert.True(t, c.MarkProcessed("g-1"))
}

func TestMarkProcessedConcurrent(t *testing.T) {
	c := NewDedupCache(0)

	var firsts int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.MarkProcessed("same-guid") {
				atomic.AddInt64(&firsts, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), firsts, "exactly one goroutine passes the gate")
}

func TestMarkProcessedConcurrentDistinct(t *testing.T) {
	c := NewDedupCache(0)

	var firsts int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if c.MarkProcessed(fmt.Sprintf("g-%d", n)) {
				atomic.AddInt64(&firsts, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(200), firsts)
}
