package utils

import (
	"runtime"
	"sort"
	"sync"

	"finnie/src/logger"
)

// -----------------------------------------------------------------------------
// MemoryManager keeps one ring buffer per key (a conversation, a ticker) and
// halves retention when the process heap grows past the configured limit.
// -----------------------------------------------------------------------------

type MemoryManager[T any] struct {
	streams       map[string]*RingBuffer[T]
	MaxMemoryMB   int
	MaxDataPoints int
	Logger        *logger.Logger
	mu            sync.RWMutex

	// heapMB is swapped in tests
	heapMB func() float64
}

// -----------------------------------------------------------------------------

func NewMemoryManager[T any](maxMemoryMB, maxDataPoints int, log *logger.Logger) *MemoryManager[T] {
	if log == nil {
		log = logger.NewLogger(nil, "MemoryManager")
	}
	return &MemoryManager[T]{
		streams:       make(map[string]*RingBuffer[T]),
		MaxMemoryMB:   maxMemoryMB,
		MaxDataPoints: maxDataPoints,
		Logger:        log,
		heapMB:        processHeapMB,
	}
}

// -----------------------------------------------------------------------------

// Add appends an item to the buffer for key, creating it on first use.
func (mm *MemoryManager[T]) Add(key string, item T) {
	mm.mu.Lock()
	buffer, ok := mm.streams[key]
	if !ok {
		buffer = NewRingBuffer[T](mm.MaxDataPoints)
		mm.streams[key] = buffer
	}
	buffer.Append(item)
	check := buffer.Size()%100 == 0
	mm.mu.Unlock()

	// Periodic memory check
	if check {
		mm.CheckMemoryLimits()
	}
}

// -----------------------------------------------------------------------------

// Latest returns up to n newest items for key, oldest first. n <= 0 means all.
func (mm *MemoryManager[T]) Latest(key string, n int) []T {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	buffer, ok := mm.streams[key]
	if !ok {
		return []T{}
	}
	if n <= 0 {
		return buffer.GetAll()
	}
	return buffer.GetLatest(n)
}

// -----------------------------------------------------------------------------

// Count returns the number of items held for key.
func (mm *MemoryManager[T]) Count(key string) int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	if buffer, ok := mm.streams[key]; ok {
		return buffer.Size()
	}
	return 0
}

// -----------------------------------------------------------------------------

func (mm *MemoryManager[T]) Has(key string) bool {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	_, ok := mm.streams[key]
	return ok
}

// -----------------------------------------------------------------------------

// Delete drops the buffer for key.
func (mm *MemoryManager[T]) Delete(key string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	delete(mm.streams, key)
}

// -----------------------------------------------------------------------------

// Keys returns all keys, sorted.
func (mm *MemoryManager[T]) Keys() []string {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	keys := make([]string, 0, len(mm.streams))
	for k := range mm.streams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// -----------------------------------------------------------------------------

// CheckMemoryLimits halves every large buffer when the heap is over the limit.
func (mm *MemoryManager[T]) CheckMemoryLimits() {
	if mm.MaxMemoryMB <= 0 {
		return
	}
	currentMemory := mm.heapMB()
	if currentMemory <= float64(mm.MaxMemoryMB) {
		return
	}

	mm.Logger.Info("Memory usage %.1fMB exceeds limit %dMB. Cleaning up.", currentMemory, mm.MaxMemoryMB)

	mm.mu.Lock()
	for _, buffer := range mm.streams {
		if buffer.Capacity() > 100 {
			newCapacity := buffer.Capacity() / 2
			if newCapacity < 50 {
				newCapacity = 50
			}
			buffer.Resize(newCapacity)
		}
	}
	mm.mu.Unlock()

	runtime.GC()
}

// -----------------------------------------------------------------------------

// Cleanup clears all data
func (mm *MemoryManager[T]) Cleanup() {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.streams = make(map[string]*RingBuffer[T])
}

// -----------------------------------------------------------------------------

func processHeapMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / 1024 / 1024
}
