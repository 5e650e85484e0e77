package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/poiesic/lunaris/core"
)

// fixtureID is an identifier that may appear in fixture files as either a
// JSON number or a string.
type fixtureID string

func (f *fixtureID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = fixtureID(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = fixtureID(data)
	return nil
}

// cardRecord mirrors one card document of a deck export.
// The export uses the short_meam key, misspelling and all.
type cardRecord struct {
	ID           fixtureID         `json:"id"`
	Name         string            `json:"card"`
	ShortMeaning string            `json:"short_meam"`
	Kind         string            `json:"kind"`
	Category     string            `json:"category"`
	Content      cardContentRecord `json:"content"`
}

type cardContentRecord struct {
	OverallMeaning     string   `json:"overall_meaning"`
	AttuneToTheMoon    string   `json:"attune_to_the_moon"`
	AdditionalMeanings []string `json:"additional_meanings"`
	TheTeaching        string   `json:"the_teaching"`
}

// card converts the record to its domain form.
func (cr cardRecord) card() *core.Card {
	return &core.Card{
		ID:           string(cr.ID),
		Name:         cr.Name,
		ShortMeaning: cr.ShortMeaning,
		Kind:         cr.Kind,
		Category:     cr.Category,
		Content: core.CardContent{
			OverallMeaning:     cr.Content.OverallMeaning,
			AttuneToTheMoon:    cr.Content.AttuneToTheMoon,
			AdditionalMeanings: cr.Content.AdditionalMeanings,
			TheTeaching:        cr.Content.TheTeaching,
		},
	}
}

// knowledgeRecord mirrors one entry of a knowledge fixture file.
type knowledgeRecord struct {
	ID      fixtureID `json:"id"`
	Content string    `json:"content"`
}

// fixtureItems splits a fixture into individual record documents.
// A fixture holds either a JSON array of records or a single record object.
func fixtureItems(r io.Reader) ([]json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing fixture: %w", err)
		}
		return items, nil
	}

	return []json.RawMessage{data}, nil
}

func decodeCardRecords(r io.Reader) ([]cardRecord, error) {
	items, err := fixtureItems(r)
	if err != nil {
		return nil, err
	}

	records := make([]cardRecord, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &records[i]); err != nil {
			return nil, fmt.Errorf("parsing card %d: %w", i, err)
		}
	}
	return records, nil
}

func decodeKnowledgeRecords(r io.Reader) ([]knowledgeRecord, error) {
	items, err := fixtureItems(r)
	if err != nil {
		return nil, err
	}

	records := make([]knowledgeRecord, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &records[i]); err != nil {
			return nil, fmt.Errorf("parsing knowledge entry %d: %w", i, err)
		}
	}
	return records, nil
}
