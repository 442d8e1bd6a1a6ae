package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for passage documents.
//
// Transcript text and chapter titles get English stemming. The video ID and
// timestamp are keywords: the first filters, the second is only displayed.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	text := bleve.NewTextFieldMapping()
	text.Analyzer = en.AnalyzerName
	text.Store = true
	text.IncludeTermVectors = true
	doc.AddFieldMappingsAt("text", text)

	chapter := bleve.NewTextFieldMapping()
	chapter.Analyzer = en.AnalyzerName
	chapter.Store = true
	doc.AddFieldMappingsAt("chapter_title", chapter)

	videoID := bleve.NewTextFieldMapping()
	videoID.Analyzer = keyword.Name
	videoID.Store = true
	doc.AddFieldMappingsAt("video_id", videoID)

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("id", id)

	timestamp := bleve.NewTextFieldMapping()
	timestamp.Analyzer = keyword.Name
	timestamp.Store = true
	timestamp.Index = false
	doc.AddFieldMappingsAt("timestamp", timestamp)

	index := bleve.NewNumericFieldMapping()
	index.Store = true
	doc.AddFieldMappingsAt("index", index)

	seconds := bleve.NewNumericFieldMapping()
	seconds.Store = true
	doc.AddFieldMappingsAt("seconds", seconds)

	indexMapping.DefaultMapping = doc
	return indexMapping
}
