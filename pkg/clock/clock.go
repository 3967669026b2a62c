package clock

import (
	"sync"
	"time"
)

// Clock источник текущего времени
type Clock interface {
	Now() time.Time
}

// Real системные часы
type Real struct{}

// NewReal создает системные часы
func NewReal() *Real {
	return &Real{}
}

// Now возвращает текущее время
func (c *Real) Now() time.Time {
	return time.Now()
}

// Mock управляемые часы для тестов
type Mock struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewMock создает часы, остановленные на t
func NewMock(t time.Time) *Mock {
	return &Mock{currentTime: t}
}

// Now возвращает установленное время
func (c *Mock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

// Set устанавливает текущее время
func (c *Mock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// Add сдвигает текущее время на d
func (c *Mock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
}
