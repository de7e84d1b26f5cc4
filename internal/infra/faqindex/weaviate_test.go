package faqindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDocumentFromProperties(t *testing.T) {
	obj := map[string]interface{}{
		"faqId":       "7",
		"content":     "Question: q\nAnswer: a\n",
		"question":    "q",
		"answer":      "a",
		"instruction": "be brief",
		"url":         "https://example.com",
		"active":      true,
		"timestamp":   float64(1735689600),
		"tags":        []interface{}{"audio", 3, "video"},
	}

	doc := documentFromProperties(obj)
	require.Equal(t, "7", doc.ID)
	require.Equal(t, "Question: q\nAnswer: a\n", doc.Content)
	require.Equal(t, "q", doc.Metadata.Question)
	require.Equal(t, "a", doc.Metadata.Answer)
	require.Equal(t, "be brief", doc.Metadata.Instruction)
	require.Equal(t, "https://example.com", doc.Metadata.URL)
	require.True(t, doc.Metadata.Active)
	require.Equal(t, time.Unix(1735689600, 0).UTC(), doc.Metadata.Timestamp)
	require.Equal(t, []string{"audio", "video"}, doc.Metadata.Tags)
}

func TestDocumentFromPropertiesToleratesMissingKeys(t *testing.T) {
	doc := documentFromProperties(map[string]interface{}{})
	require.Empty(t, doc.ID)
	require.Empty(t, doc.Content)
	require.False(t, doc.Metadata.Active)
	require.Nil(t, doc.Metadata.Tags)
}

func TestObjectIDIsDeterministic(t *testing.T) {
	require.Equal(t, objectID("7"), objectID("7"))
	require.NotEqual(t, objectID("7"), objectID("8"))
}
