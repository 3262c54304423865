// Package search provides player search over every imported tournament
// using Bleve. Names are folded before indexing so "Élodie" and "elodie"
// find the same player.
package search

import (
	"strings"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
)

// PlayerDocument is one player standing as stored in the index.
type PlayerDocument struct {
	ID             string `json:"id"`
	TournamentID   string `json:"tournament_id"`
	TournamentName string `json:"tournament_name"`
	Name           string `json:"name"`
	NameFolded     string `json:"name_folded"`
	Title          string `json:"title,omitempty"`
	Federation     string `json:"federation,omitempty"`
	Rating         int    `json:"rating,omitempty"`
	Rank           int    `json:"rank,omitempty"`
}

// ToMap converts the document to a map keyed by the mapping's field names.
func (d *PlayerDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":              d.ID,
		"tournament_id":   d.TournamentID,
		"tournament_name": d.TournamentName,
		"name":            d.Name,
		"name_folded":     d.NameFolded,
	}

	if d.Title != "" {
		m["title"] = d.Title
	}
	if d.Federation != "" {
		m["federation"] = d.Federation
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}
	if d.Rank > 0 {
		m["rank"] = d.Rank
	}
	return m
}

// PlayerToDocument builds a document from a raw player row joined with its
// tournament name. ok is false for rows without an id or a name.
func PlayerToDocument(row domain.RawRow) (*PlayerDocument, bool) {
	doc := &PlayerDocument{
		ID:             row.String("id"),
		TournamentID:   row.String("tournament_id"),
		TournamentName: row.String("tournament_name"),
		Name:           row.String("name", "player_name"),
		Title:          row.String("title"),
		Federation:     strings.ToUpper(row.String("federation", "fed")),
	}
	if doc.ID == "" || doc.Name == "" {
		return nil, false
	}
	doc.NameFolded = normalize.FoldName(doc.Name)

	if v, ok := row.Get("rating"); ok {
		if n, ok := normalize.NumberFromValue(v); ok {
			doc.Rating = n
		}
	}
	if v, ok := row.Get("rank"); ok {
		if n, ok := normalize.NumberFromValue(v); ok {
			doc.Rank = n
		}
	}
	return doc, true
}
