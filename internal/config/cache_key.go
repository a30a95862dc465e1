package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SetPayloadKey returns the cache key for an exam set's sanitized question payload.
func (r *CacheKeyStruct) SetPayloadKey(setID string) string {
	return fmt.Sprintf("examset:%s:payload", setID)
}

var CacheKey = NewCacheKeyStruct()
