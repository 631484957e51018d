package models

import "encoding/json"

// Dataset is the whole experiment_orders.json document. It is decoded once and never mutated.
type Dataset struct {
	Orders   []Order  `json:"orders"`
	Metadata Metadata `json:"metadata"`

	fields fieldSet
}

var datasetFields = []string{"orders", "metadata"}

// HasKey reports whether the decoded document carried the top-level key.
func (d *Dataset) HasKey(key string) bool {
	return d.fields.has(key)
}

// DecodeDataset parses a JSON document into a Dataset.
func DecodeDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (d *Dataset) UnmarshalJSON(data []byte) error {
	type plain Dataset
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Dataset(p)
	return d.fields.capture(data, datasetFields)
}

func (d Dataset) MarshalJSON() ([]byte, error) {
	type plain Dataset
	base, err := json.Marshal(plain(d))
	if err != nil {
		return nil, err
	}
	return d.fields.encode(base)
}
