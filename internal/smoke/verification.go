package smoke

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"howett.net/plist"

	"github.com/okian/dorsum/internal/domain/profile"
)

// extractIdentifiers decodes a profile and returns every generated
// identifier in it: each PayloadUUID plus each PayloadIdentifier whose last
// segment is a UUID.
func extractIdentifiers(body []byte) ([]string, error) {
	var doc map[string]interface{}
	if _, err := plist.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var ids []string
	if err := collect(doc, &ids); err != nil {
		return nil, err
	}
	content, _ := doc["PayloadContent"].([]interface{})
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: no payload content", ErrDecode)
	}
	for _, item := range content {
		dict, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: payload content is %T", ErrDecode, item)
		}
		if err := collect(dict, &ids); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func collect(dict map[string]interface{}, ids *[]string) error {
	raw, ok := dict["PayloadUUID"].(string)
	if !ok {
		return fmt.Errorf("%w: missing PayloadUUID", ErrDecode)
	}
	if _, err := uuid.Parse(raw); err != nil {
		return fmt.Errorf("%w: %q", ErrIdentifierFormat, raw)
	}
	*ids = append(*ids, raw)

	if ident, ok := dict["PayloadIdentifier"].(string); ok {
		last := ident[strings.LastIndex(ident, ".")+1:]
		if _, err := uuid.Parse(last); err == nil {
			*ids = append(*ids, last)
		}
	}
	return nil
}

// verifyProfile checks one fetched profile of kind and returns its identifiers.
func verifyProfile(kind profile.Kind, resp response) ([]string, error) {
	if resp.status != StatusOK {
		return nil, fmt.Errorf("%w: %s: %d", ErrStatus, kind, resp.status)
	}
	if resp.contentType != profile.ContentType {
		return nil, fmt.Errorf("%w: %s: %q", ErrContentType, kind, resp.contentType)
	}
	ids, err := extractIdentifiers(resp.body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	if len(ids) != kind.Slots() {
		return nil, fmt.Errorf("%w: %s: got %d, want %d", ErrIdentifierCount, kind, len(ids), kind.Slots())
	}
	return ids, nil
}

// identifierRegistry records every identifier seen across the run.
type identifierRegistry struct {
	mu   sync.Mutex
	seen map[string]string
}

func newIdentifierRegistry() *identifierRegistry {
	return &identifierRegistry{seen: make(map[string]string)}
}

// record adds ids from source and fails on the first one already seen.
func (r *identifierRegistry) record(source string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		key := strings.ToLower(id)
		if prev, ok := r.seen[key]; ok {
			return fmt.Errorf("%w: %s in %s and %s", ErrIdentifierReused, id, prev, source)
		}
		r.seen[key] = source
	}
	return nil
}

func (r *identifierRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
