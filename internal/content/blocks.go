// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content implements the CMS page content model: the mapping
// between stored content JSON and the block editor representation, row
// layout parsing, and the typed views the public renderer consumes.
package content

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// BlockType tags the variant held by a Block.
type BlockType string

const (
	BlockHero    BlockType = "hero"
	BlockBody    BlockType = "body"
	BlockSection BlockType = "section"
	BlockRow     BlockType = "row"
)

// DefaultRowLayout is used for rows stored without a layout.
const DefaultRowLayout = "6-6"

// Block is one editable piece of page content. Which fields are meaningful
// depends on Type:
//
//	hero:    Title, Description, Image
//	body:    Text
//	section: Title, Text
//	row:     Layout, Cells
type Block struct {
	Type        BlockType `json:"type"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Text        string    `json:"text,omitempty"`
	Layout      string    `json:"layout,omitempty"`
	Cells       []RowCell `json:"cells,omitempty"`
}

// RowCell is one column of a row block.
type RowCell struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

func (c RowCell) empty() bool {
	return c.Title == "" && c.Text == "" && c.Image == ""
}

// LayoutOption is a row layout offered by the editor.
type LayoutOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// LayoutOptions lists the row layouts the editor offers.
var LayoutOptions = []LayoutOption{
	{Value: "12", Label: "Full width (1 column)"},
	{Value: "6-6", Label: "Two columns (50-50)"},
	{Value: "8-4", Label: "Two columns (66-33)"},
	{Value: "4-8", Label: "Two columns (33-66)"},
	{Value: "4-4-4", Label: "Three columns"},
	{Value: "3-3-3-3", Label: "Four columns"},
}

// ErrNotObject is returned when stored or submitted content is not a JSON object.
var ErrNotObject = errors.New("content must be a JSON object")

var layoutSep = regexp.MustCompile(`[-,\s]+`)

// Parse decodes raw content JSON into a generic map. Empty input yields an
// empty map.
func Parse(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, ErrNotObject
	}
	if m == nil {
		return map[string]any{}, nil
	}
	return m, nil
}

// ContentToBlocks decomposes content into editor blocks, in order: hero,
// body, sections, rows. Content without any of those but with a heading
// or subheading yields one hero block built from them. The result always
// holds at least one block.
func ContentToBlocks(c map[string]any) []Block {
	var blocks []Block

	if hero, ok := c["hero"].(map[string]any); ok {
		blocks = append(blocks, Block{
			Type:        BlockHero,
			Title:       str(hero["title"]),
			Description: str(hero["description"]),
			Image:       str(hero["image"]),
		})
	}

	if body, ok := c["body"].(string); ok {
		blocks = append(blocks, Block{Type: BlockBody, Text: body})
	}

	if sections, ok := c["sections"].([]any); ok {
		for _, item := range sections {
			s, ok := item.(map[string]any)
			if !ok {
				continue
			}
			blocks = append(blocks, Block{
				Type:  BlockSection,
				Title: str(s["title"]),
				Text:  str(s["text"]),
			})
		}
	}

	if rows, ok := c["rows"].([]any); ok {
		for _, item := range rows {
			r, ok := item.(map[string]any)
			if !ok {
				continue
			}
			cells, ok := r["cells"].([]any)
			if !ok || len(cells) == 0 {
				continue
			}
			layout := str(r["layout"])
			if layout == "" {
				layout = DefaultRowLayout
			}
			row := Block{Type: BlockRow, Layout: layout, Cells: make([]RowCell, 0, len(cells))}
			for _, cell := range cells {
				cm, _ := cell.(map[string]any)
				row.Cells = append(row.Cells, RowCell{
					Title: str(cm["title"]),
					Text:  str(cm["text"]),
					Image: str(cm["image"]),
				})
			}
			blocks = append(blocks, row)
		}
	}

	if len(blocks) == 0 {
		heading := firstString(c, "Heading", "heading", "title")
		subheading := firstString(c, "Subheading", "subheading")
		if heading != "" || subheading != "" {
			blocks = append(blocks, Block{Type: BlockHero, Title: heading, Description: subheading})
		}
	}

	if len(blocks) == 0 {
		blocks = []Block{{Type: BlockHero}}
	}
	return blocks
}

// BlocksToContent assembles blocks back into content JSON. Empty fields are
// omitted rather than stored as empty strings.
//
// Only the first hero block with a non-empty field and the first non-blank
// body block are kept; later hero and body blocks are dropped. Sections are
// collected in order. Rows whose cells are all empty are dropped.
func BlocksToContent(blocks []Block) map[string]any {
	out := map[string]any{}
	var sections, rows []any
	heroSet, bodySet := false, false

	for _, b := range blocks {
		switch b.Type {
		case BlockHero:
			if heroSet || (b.Title == "" && b.Description == "" && b.Image == "") {
				continue
			}
			out["hero"] = compact("title", b.Title, "description", b.Description, "image", b.Image)
			heroSet = true

		case BlockBody:
			text := strings.TrimSpace(b.Text)
			if bodySet || text == "" {
				continue
			}
			out["body"] = text
			bodySet = true

		case BlockSection:
			sections = append(sections, compact("title", b.Title, "text", b.Text))

		case BlockRow:
			keep := false
			cells := make([]any, 0, len(b.Cells))
			for _, c := range b.Cells {
				if !c.empty() {
					keep = true
				}
				cells = append(cells, compact("title", c.Title, "text", c.Text, "image", c.Image))
			}
			if !keep {
				continue
			}
			layout := b.Layout
			if layout == "" {
				layout = DefaultRowLayout
			}
			rows = append(rows, map[string]any{"layout": layout, "cells": cells})
		}
	}

	if len(sections) > 0 {
		out["sections"] = sections
	}
	if len(rows) > 0 {
		out["rows"] = rows
	}
	return out
}

// LayoutCellCount returns how many cells a layout string describes,
// never less than one.
func LayoutCellCount(layout string) int {
	n := 0
	for _, part := range layoutSep.Split(strings.TrimSpace(layout), -1) {
		if part != "" {
			n++
		}
	}
	return max(1, n)
}

// compact builds a map from key/value pairs, skipping empty values.
func compact(kv ...string) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			m[kv[i]] = kv[i+1]
		}
	}
	return m
}

// str returns v if it is a string, otherwise "".
func str(v any) string {
	s, _ := v.(string)
	return s
}

// firstString returns the value of the first key holding a string.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			return s
		}
	}
	return ""
}
