package model

import "fmt"

// VerseLine is a single verse within a fetched passage.
type VerseLine struct {
	BookID   string `json:"book_id"`   // e.g. "JHN"
	BookName string `json:"book_name"` // e.g. "John"
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// Heading returns the "Book C:V" label shown above a verse.
func (v VerseLine) Heading() string {
	return fmt.Sprintf("%s %d:%d", v.BookName, v.Chapter, v.Verse)
}

// VerseRecord is the result of a successful passage lookup.
// Treat it as read-only once returned by the fetch client.
type VerseRecord struct {
	Reference       string      `json:"reference"` // canonical form, e.g. "John 3:16"
	Verses          []VerseLine `json:"verses"`
	Text            string      `json:"text"` // all verses concatenated
	TranslationID   string      `json:"translation_id,omitempty"`
	TranslationName string      `json:"translation_name,omitempty"`
}
