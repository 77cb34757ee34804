package service

import (
	"bytes"
	"encoding/json"
	"strconv"

	"sharetome/internal/model"
)

// tableWire accepts both visibility field names the backend has used.
type tableWire struct {
	TableID   string `json:"table_id"`
	TableName string `json:"table_name"`
	IsPublic  *bool  `json:"is_public"`
	Public    *bool  `json:"public"`
}

func (w tableWire) toModel() model.Table {
	t := model.Table{TableID: w.TableID, TableName: w.TableName}
	switch {
	case w.IsPublic != nil:
		t.IsPublic = *w.IsPublic
	case w.Public != nil:
		t.IsPublic = *w.Public
	}
	return t
}

// documentPage decodes a document listing that is either a bare array of hits
// or a search response with the hits nested under hits.hits.
type documentPage struct {
	items []documentWire
}

func (p *documentPage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		p.items = nil
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, &p.items)
	}
	var wrapped struct {
		Hits struct {
			Hits []documentWire `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	p.items = wrapped.Hits.Hits
	return nil
}

func (p documentPage) normalize() []model.Document {
	docs := make([]model.Document, 0, len(p.items))
	for _, w := range p.items {
		docs = append(docs, w.toModel())
	}
	return docs
}

type documentWire struct {
	ID        string      `json:"id"`
	RawID     string      `json:"_id"`
	Source    *sourceWire `json:"source"`
	RawSource *sourceWire `json:"_source"`
}

type sourceWire struct {
	Properties         propertiesWire `json:"properties"`
	TextRepresentation string         `json:"text_representation"`
}

type propertiesWire struct {
	Type               string   `json:"type"`
	TextRepresentation string   `json:"text_representation"`
	Properties         metaWire `json:"properties"`
}

type metaWire struct {
	PageNumber any    `json:"page_number"`
	FileName   string `json:"file_name"`
}

func (w documentWire) toModel() model.Document {
	d := model.Document{ID: w.ID}
	if d.ID == "" {
		d.ID = w.RawID
	}

	src := w.Source
	if src == nil {
		src = w.RawSource
	}
	if src == nil {
		return d
	}

	text := src.Properties.TextRepresentation
	if text == "" {
		text = src.TextRepresentation
	}
	d.Source.Properties = model.DocumentProperties{
		Type:               src.Properties.Type,
		TextRepresentation: text,
		Properties: model.DocumentMeta{
			PageNumber: pageNumber(src.Properties.Properties.PageNumber),
			FileName:   src.Properties.Properties.FileName,
		},
	}
	return d
}

func pageNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(n)
		if err == nil {
			return i
		}
	}
	return 0
}
