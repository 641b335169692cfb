package weaviate

import (
	"github.com/poiesic/docgen/core"
	"github.com/weaviate/weaviate/entities/models"
)

// documentClass builds the class definition for stored documents.
// Vectors are supplied by the caller so no vectorizer module is configured.
func documentClass() *models.Class {
	nested := make([]*models.NestedProperty, 0, len(core.MetadataFields))
	for _, field := range core.MetadataFields {
		dataType := "text"
		if field == core.FieldCreatedAt {
			dataType = "date"
		}
		nested = append(nested, &models.NestedProperty{
			Name:     field,
			DataType: []string{dataType},
		})
	}

	return &models.Class{
		Class:      core.CollectionName,
		Vectorizer: "none",
		Properties: []*models.Property{
			{
				Name:     core.PropContent,
				DataType: []string{"text"},
			},
			{
				Name:             core.PropMetadata,
				DataType:         []string{"object"},
				NestedProperties: nested,
			},
		},
	}
}

// documentProperties renders a document as object properties.
func documentProperties(doc *core.Document) map[string]any {
	return map[string]any{
		core.PropContent:  doc.Content,
		core.PropMetadata: doc.Metadata.Properties(),
	}
}
