// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Index key prefixes
const (
	KeyPrefixIndex       = "index"
	KeyPrefixIndexRoom   = "room"
	KeyPrefixIndexParent = "parent"

	// encodedSegmentPrefix marks a segment that was base64 encoded because
	// it contained characters NATS does not allow in keys.
	encodedSegmentPrefix = "b64-"
)

// KeyBuilder builds the keys stored next to entities in a bucket.
//
// NATS limitations: https://docs.nats.io/nats-concepts/jetstream/key-value-store#notes
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with an optional prefix
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{prefix: prefix}
}

// EntityKey returns the key an entity is stored under.
func (kb *KeyBuilder) EntityKey(id string) string {
	return kb.applyPrefix(Segment(id))
}

// IndexKey builds an index marker key, e.g. "index/room/<room>/<event>".
func (kb *KeyBuilder) IndexKey(indexType, indexValue, entityID string) string {
	return kb.applyPrefix(strings.Join([]string{KeyPrefixIndex, indexType, Segment(indexValue), Segment(entityID)}, "/"))
}

// IndexPrefix returns the prefix shared by every marker of one index value.
func (kb *KeyBuilder) IndexPrefix(indexType, indexValue string) string {
	return kb.applyPrefix(strings.Join([]string{KeyPrefixIndex, indexType, Segment(indexValue)}, "/")) + "/"
}

// IsIndexKey reports whether key is an index marker rather than an entity.
func (kb *KeyBuilder) IsIndexKey(key string) bool {
	return strings.HasPrefix(key, kb.applyPrefix(KeyPrefixIndex+"/"))
}

// IndexedID returns the entity id at the end of an index key.
func (kb *KeyBuilder) IndexedID(key string) (string, error) {
	i := strings.LastIndex(key, "/")
	if i < 0 || i == len(key)-1 {
		return "", fmt.Errorf("malformed index key %q", key)
	}
	return DecodeSegment(key[i+1:])
}

func (kb *KeyBuilder) applyPrefix(key string) string {
	if kb.prefix == "" {
		return key
	}
	return kb.prefix + "/" + key
}

// Segment returns s unchanged when it is a valid key token and a marked
// base64 form otherwise.
func Segment(s string) string {
	if s != "" && !strings.HasPrefix(s, encodedSegmentPrefix) && isKeySafe(s) {
		return s
	}
	return encodedSegmentPrefix + base64.RawURLEncoding.EncodeToString([]byte(s))
}

// DecodeSegment reverses Segment.
func DecodeSegment(s string) (string, error) {
	encoded, ok := strings.CutPrefix(s, encodedSegmentPrefix)
	if !ok {
		return s, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding key segment %q: %w", s, err)
	}
	return string(raw), nil
}

func isKeySafe(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '=':
		default:
			return false
		}
	}
	return true
}
