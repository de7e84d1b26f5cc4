package faq

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/xreal/faqbase/pkg/errors"
)

func TestParseSortDefaults(t *testing.T) {
	order, err := ParseSort("")
	require.NoError(t, err)
	require.Equal(t, SortOrder{Field: "timestamp", Desc: true}, order)
}

func TestParseSortExpressions(t *testing.T) {
	tests := []struct {
		raw  string
		want SortOrder
	}{
		{"question,asc", SortOrder{Field: "question", Desc: false}},
		{"question,desc", SortOrder{Field: "question", Desc: true}},
		{"id", SortOrder{Field: "id", Desc: true}},
		{" timestamp , ASC ", SortOrder{Field: "timestamp", Desc: false}},
		{"active,bogus", SortOrder{Field: "active", Desc: true}},
	}
	for _, tc := range tests {
		order, err := ParseSort(tc.raw)
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, order, tc.raw)
	}
}

func TestParseSortRejectsUnknownField(t *testing.T) {
	_, err := ParseSort("password,desc")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestPageRequestOffset(t *testing.T) {
	require.Equal(t, 0, PageRequest{Page: 0, Size: 20}.Offset())
	require.Equal(t, 40, PageRequest{Page: 2, Size: 20}.Offset())
	require.Equal(t, 0, PageRequest{Page: -1, Size: 20}.Offset())
}
