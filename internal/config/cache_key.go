package config

import (
	"fmt"
	"strings"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SettingKey returns the cache key for a single app setting value
func (r *CacheKeyStruct) SettingKey(key string) string {
	return fmt.Sprintf("setting:%s", key)
}

// PortalLookupKey returns the cache key for a parent portal lookup.
// The phone is part of the key so a wrong phone never hits a cached answer.
func (r *CacheKeyStruct) PortalLookupKey(code, phone string) string {
	return fmt.Sprintf("portal:%s:%s", strings.ToUpper(code), phone)
}

// PortalStudentPattern matches every cached portal lookup for a student code
func (r *CacheKeyStruct) PortalStudentPattern(code string) string {
	return fmt.Sprintf("portal:%s:*", strings.ToUpper(code))
}

// PortalAllPattern matches every cached portal lookup
func (r *CacheKeyStruct) PortalAllPattern() string {
	return "portal:*"
}

// RevokedTokenKey returns the cache key marking an admin token id as logged out
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}

var CacheKey = NewCacheKeyStruct()
