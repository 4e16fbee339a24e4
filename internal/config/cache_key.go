package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's active session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// ClassStudentCountKey returns the cache key for a class's enrollment count.
func (r *CacheKeyStruct) ClassStudentCountKey(classID int) string {
	return fmt.Sprintf("class:%d:student_count", classID)
}

// ClassFeedChannel returns the Redis PubSub channel for a class's
// live submission feed.
func (r *CacheKeyStruct) ClassFeedChannel(classID int) string {
	return fmt.Sprintf("class:%d:submissions", classID)
}

var CacheKey = NewCacheKeyStruct()
