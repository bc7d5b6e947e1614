package xapi

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// LangMap is an xAPI language map (locale tag to string). It preserves the
// key order of the wire payload because the last-resort resolution rule
// falls back to the first stored value, which a Go map cannot express.
type LangMap struct {
	entries []langEntry
}

type langEntry struct {
	tag   string
	value string
}

// UnmarshalJSON decodes the object token by token to retain key order.
// Non-string values degrade to empty strings rather than failing the
// whole statement.
func (m *LangMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return goerr.Wrap(err, "failed to read language map")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		// Not an object; treat as an empty map.
		m.entries = nil
		return nil
	}

	m.entries = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return goerr.Wrap(err, "failed to read language map key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return goerr.New("language map key is not a string")
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return goerr.Wrap(err, "failed to read language map value", goerr.V("tag", key))
		}
		value, _ := raw.(string)
		m.entries = append(m.entries, langEntry{tag: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return goerr.Wrap(err, "failed to read language map end")
	}
	return nil
}

// MarshalJSON renders the map in its stored order.
func (m LangMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		tag, err := json.Marshal(e.tag)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.value)
		if err != nil {
			return nil, err
		}
		buf.Write(tag)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Len returns the number of stored entries.
func (m LangMap) Len() int {
	return len(m.entries)
}

// Get returns the value for the given locale tag.
func (m LangMap) Get(tag string) (string, bool) {
	for _, e := range m.entries {
		if e.tag == tag {
			return e.value, true
		}
	}
	return "", false
}

// First returns the first stored value, or empty for an empty map.
func (m LangMap) First() string {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[0].value
}
