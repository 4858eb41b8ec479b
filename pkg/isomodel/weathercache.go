package isomodel

import (
	"path/filepath"
	"sync"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/weather"
	"golang.org/x/sync/singleflight"
)

// WeatherCache shares parsed weather between user models that reference the
// same EPW file. It is safe for concurrent use.
type WeatherCache struct {
	mu      sync.RWMutex
	entries map[string]*weather.Weather
	group   singleflight.Group
}

// NewWeatherCache returns an empty cache
func NewWeatherCache() *WeatherCache {
	return &WeatherCache{entries: make(map[string]*weather.Weather)}
}

// Load returns the cached weather for path, reading it on first use
func (c *WeatherCache) Load(path string) (*weather.Weather, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}

	c.mu.RLock()
	w, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return w, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		w, err := weather.Load(path)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = w
		c.mu.Unlock()
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*weather.Weather), nil
}

// Len returns the number of cached weather files
func (c *WeatherCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
