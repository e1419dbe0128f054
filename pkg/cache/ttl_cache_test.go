package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSet(t *testing.T) {
	c := New[string, float64](time.Hour, time.Hour)
	defer c.Close()

	_, ok := c.Get("USD:EUR")
	assert.False(t, ok)

	c.Set("USD:EUR", 0.92)
	rate, ok := c.Get("USD:EUR")
	assert.True(t, ok)
	assert.Equal(t, 0.92, rate)

	// Üzerine yazma
	c.Set("USD:EUR", 0.95)
	rate, _ = c.Get("USD:EUR")
	assert.Equal(t, 0.95, rate)
}

func TestExpiry(t *testing.T) {
	c := New[string, int](20*time.Millisecond, time.Hour)
	defer c.Close()

	c.Set("key", 42)
	_, ok := c.Get("key")
	assert.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get("key")
	assert.False(t, ok, "süresi dolan entry okunamamalı")
}

func TestBackgroundEviction(t *testing.T) {
	c := New[string, int](10*time.Millisecond, 20*time.Millisecond)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 2, c.Len())

	// Temizlik döngüsü stale entry'leri fiziksel olarak silmeli
	assert.Eventually(t, func() bool { return c.Len() == 0 },
		500*time.Millisecond, 10*time.Millisecond)
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int, int](time.Hour, time.Hour)
	defer c.Close()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Set(i, g)
				c.Get(i)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 100, c.Len())
}
