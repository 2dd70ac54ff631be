package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuestionSetKey returns the cache key for the raw question payload of a topic
func (r *CacheKeyStruct) QuestionSetKey(section, topic string) string {
	return fmt.Sprintf("questions:%s:%s", section, topic)
}

// RevokedTokenKey returns the cache key marking a JWT (by JTI) as logged out
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// ActiveTestSessionsKey returns the counter of currently open test streams
func (r *CacheKeyStruct) ActiveTestSessionsKey() string {
	return "test:active_sessions"
}

var CacheKey = NewCacheKeyStruct()
