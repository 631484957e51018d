package models

import (
	"encoding/json"
	"slices"
)

// fieldSet remembers which known keys a decoded JSON object carried and
// keeps the unknown ones, so a decoded value re-encodes to the same document.
// A zero fieldSet means the value was built in code and every field counts as present.
type fieldSet struct {
	present map[string]bool
	extra   map[string]json.RawMessage
}

func (f *fieldSet) capture(data []byte, known []string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.present = make(map[string]bool, len(raw))
	f.extra = nil
	for key, value := range raw {
		if slices.Contains(known, key) {
			f.present[key] = true
			continue
		}
		if f.extra == nil {
			f.extra = make(map[string]json.RawMessage)
		}
		f.extra[key] = value
	}
	return nil
}

func (f fieldSet) has(key string) bool {
	return f.present == nil || f.present[key]
}

// encode trims base (the plain struct encoding) down to the captured keys and
// merges the unknown ones back in.
func (f fieldSet) encode(base []byte) ([]byte, error) {
	if f.present == nil && len(f.extra) == 0 {
		return base, nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	if f.present != nil {
		for key := range out {
			if !f.present[key] {
				delete(out, key)
			}
		}
	}
	for key, value := range f.extra {
		out[key] = value
	}
	return json.Marshal(out)
}
