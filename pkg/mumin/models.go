package mumin

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Hadith as returned by the API. Only the fields the API is known to send
// are modelled; unknown fields are ignored.
type Hadith struct {
	ID              int          `json:"id"`
	CollectionID    string       `json:"collectionId"`
	BookNumber      Ref          `json:"bookNumber"`
	ChapterID       Ref          `json:"chapterId"`
	HadithNumber    string       `json:"hadithNumber"`
	HadithNumberInt int          `json:"hadithNumberInt,omitempty"`
	Label           string       `json:"label,omitempty"`
	ArabicText      string       `json:"arabicText,omitempty"`
	English         string       `json:"english,omitempty"`
	Russian         string       `json:"russian,omitempty"`
	Translation     *Translation `json:"translation,omitempty"`
}

type Translation struct {
	ID           int    `json:"id"`
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
	Narrator     string `json:"narrator,omitempty"`
}

type Collection struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	TotalHadiths int    `json:"totalHadiths"`
	Description  string `json:"description,omitempty"`
}

// Meta is the pagination block that accompanies list and search results.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of a list or search result.
type Page[T any] struct {
	Items []T   `json:"data"`
	Meta  *Meta `json:"meta,omitempty"`
}

// Ref is an identifier the API sends either as a JSON string or a number.
// It is always held as its decimal/string form.
type Ref string

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*r = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Ref(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = Ref(n.String())
	return nil
}

// Int returns r as an integer when it is numeric.
func (r Ref) Int() (int, bool) {
	n, err := strconv.Atoi(string(r))
	return n, err == nil
}
