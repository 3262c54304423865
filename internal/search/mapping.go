package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for player documents.
//
// Names are matched on name_folded, which holds the diacritic-free form
// and uses the simple analyzer (letters only, lowercased, no stemming:
// surnames must not be stemmed). The display name is stored but not
// searched. Ids, titles and federations are keywords for filtering and
// facets.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	keywordField := func(store bool) *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = store
		return f
	}

	docMapping.AddFieldMappingsAt("id", keywordField(false))
	docMapping.AddFieldMappingsAt("tournament_id", keywordField(true))
	docMapping.AddFieldMappingsAt("title", keywordField(true))
	docMapping.AddFieldMappingsAt("federation", keywordField(true))

	name := bleve.NewTextFieldMapping()
	name.Analyzer = simple.Name
	name.Store = true
	name.Index = false
	docMapping.AddFieldMappingsAt("name", name)

	folded := bleve.NewTextFieldMapping()
	folded.Analyzer = simple.Name
	folded.Store = false
	folded.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("name_folded", folded)

	tournamentName := bleve.NewTextFieldMapping()
	tournamentName.Analyzer = simple.Name
	tournamentName.Store = true
	docMapping.AddFieldMappingsAt("tournament_name", tournamentName)

	rating := bleve.NewNumericFieldMapping()
	rating.Store = true
	docMapping.AddFieldMappingsAt("rating", rating)

	rank := bleve.NewNumericFieldMapping()
	rank.Store = true
	docMapping.AddFieldMappingsAt("rank", rank)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
