package faqindex

import (
	"context"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/xreal/faqbase/internal/domain/faq"
	"github.com/xreal/faqbase/internal/infra/config"
)

// idNamespace scopes deterministic object ids so the same FAQ id always maps
// to the same Weaviate object.
var idNamespace = uuid.NameSpaceOID

// WeaviateIndex implements faq.DocumentIndex against a Weaviate class with
// externally supplied vectors.
type WeaviateIndex struct {
	client *weaviate.Client
	class  string
}

// NewWeaviateIndex builds the client and makes sure the class exists.
func NewWeaviateIndex(cfg config.WeaviateConfig) (*WeaviateIndex, error) {
	clientCfg := weaviate.Config{
		Host:   cfg.Host,
		Scheme: cfg.Scheme,
	}
	if cfg.APIKey != "" {
		clientCfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}
	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	idx := &WeaviateIndex{client: client, class: cfg.Class}
	if err := idx.ensureClass(context.Background()); err != nil {
		return nil, err
	}
	return idx, nil
}

func (w *WeaviateIndex) classObject() *models.Class {
	return &models.Class{
		Class: w.class,
		Properties: []*models.Property{
			{Name: "faqId", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
			{Name: "question", DataType: []string{"text"}},
			{Name: "answer", DataType: []string{"text"}},
			{Name: "tags", DataType: []string{"text[]"}},
			{Name: "instruction", DataType: []string{"text"}},
			{Name: "url", DataType: []string{"text"}},
			{Name: "active", DataType: []string{"boolean"}},
			{Name: "timestamp", DataType: []string{"int"}},
		},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
}

func (w *WeaviateIndex) ensureClass(ctx context.Context) error {
	schema, err := w.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("get weaviate schema: %w", err)
	}
	for _, class := range schema.Classes {
		if class.Class == w.class {
			return nil
		}
	}
	if err := w.client.Schema().ClassCreator().WithClass(w.classObject()).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", w.class, err)
	}
	return nil
}

// Save upserts a single document. The batcher replaces objects by id, so it
// doubles as the single-object upsert path.
func (w *WeaviateIndex) Save(ctx context.Context, doc faq.Document) error {
	return w.SaveAll(ctx, []faq.Document{doc})
}

// SaveAll upserts the documents in one batch call.
func (w *WeaviateIndex) SaveAll(ctx context.Context, docs []faq.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batcher := w.client.Batch().ObjectsBatcher()
	for _, doc := range docs {
		batcher = batcher.WithObjects(&models.Object{
			Class:      w.class,
			ID:         objectID(doc.ID),
			Properties: properties(doc),
			Vector:     doc.Embedding,
		})
	}
	resp, err := batcher.Do(ctx)
	if err != nil {
		return fmt.Errorf("batch save documents: %w", err)
	}
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch save document %s: %s", obj.ID, obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// DeleteByID removes the document for one FAQ id.
func (w *WeaviateIndex) DeleteByID(ctx context.Context, id string) error {
	return w.client.Data().Deleter().
		WithClassName(w.class).
		WithID(string(objectID(id))).
		Do(ctx)
}

// DeleteAll drops and recreates the class.
func (w *WeaviateIndex) DeleteAll(ctx context.Context) error {
	if err := w.client.Schema().ClassDeleter().WithClassName(w.class).Do(ctx); err != nil {
		return fmt.Errorf("delete class %s: %w", w.class, err)
	}
	return w.ensureClass(ctx)
}

// SearchByTags returns documents carrying any of the given tags.
func (w *WeaviateIndex) SearchByTags(ctx context.Context, tags []string, active *bool, page faq.PageRequest) ([]faq.Document, error) {
	fields := []graphql.Field{
		{Name: "faqId"},
		{Name: "content"},
		{Name: "question"},
		{Name: "answer"},
		{Name: "tags"},
		{Name: "instruction"},
		{Name: "url"},
		{Name: "active"},
		{Name: "timestamp"},
	}

	var where *filters.WhereBuilder
	if len(tags) > 0 {
		where = filters.Where().
			WithPath([]string{"tags"}).
			WithOperator(filters.ContainsAny).
			WithValueText(tags...)
	}
	if active != nil {
		activeFilter := filters.Where().
			WithPath([]string{"active"}).
			WithOperator(filters.Equal).
			WithValueBoolean(*active)
		if where == nil {
			where = activeFilter
		} else {
			where = filters.Where().WithOperator(filters.And).
				WithOperands([]*filters.WhereBuilder{where, activeFilter})
		}
	}

	builder := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithFields(fields...).
		WithSort(graphql.Sort{Path: []string{"timestamp"}, Order: graphql.Desc})
	if where != nil {
		builder = builder.WithWhere(where)
	}
	if page.Size > 0 {
		builder = builder.WithLimit(page.Size).WithOffset(page.Offset())
	}

	result, err := builder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search documents: %s", result.Errors[0].Message)
	}

	var docs []faq.Document
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return docs, nil
	}
	items, ok := data[w.class].([]interface{})
	if !ok {
		return docs, nil
	}
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		docs = append(docs, documentFromProperties(obj))
	}
	return docs, nil
}

// objectID derives a stable UUID from the FAQ id. Weaviate requires UUID
// object ids, FAQ ids are numeric.
func objectID(faqID string) strfmt.UUID {
	return strfmt.UUID(uuid.NewSHA1(idNamespace, []byte("faqbase/faq/"+faqID)).String())
}

func properties(doc faq.Document) map[string]interface{} {
	tags := doc.Metadata.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]interface{}{
		"faqId":       doc.ID,
		"content":     doc.Content,
		"question":    doc.Metadata.Question,
		"answer":      doc.Metadata.Answer,
		"tags":        tags,
		"instruction": doc.Metadata.Instruction,
		"url":         doc.Metadata.URL,
		"active":      doc.Metadata.Active,
		"timestamp":   doc.Metadata.Timestamp.Unix(),
	}
}

func stringProp(obj map[string]interface{}, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func documentFromProperties(obj map[string]interface{}) faq.Document {
	doc := faq.Document{
		ID:      stringProp(obj, "faqId"),
		Content: stringProp(obj, "content"),
		Metadata: faq.DocumentMetadata{
			Question:    stringProp(obj, "question"),
			Answer:      stringProp(obj, "answer"),
			Instruction: stringProp(obj, "instruction"),
			URL:         stringProp(obj, "url"),
		},
	}
	if v, ok := obj["active"].(bool); ok {
		doc.Metadata.Active = v
	}
	if v, ok := obj["timestamp"].(float64); ok {
		doc.Metadata.Timestamp = time.Unix(int64(v), 0).UTC()
	}
	if arr, ok := obj["tags"].([]interface{}); ok {
		for _, t := range arr {
			if s, ok := t.(string); ok {
				doc.Metadata.Tags = append(doc.Metadata.Tags, s)
			}
		}
	}
	return doc
}

var _ faq.DocumentIndex = (*WeaviateIndex)(nil)
