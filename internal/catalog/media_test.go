package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicatalog/internal/catalog"
	"medicatalog/internal/domain"
)

func gallery() []domain.Media {
	return []domain.Media{
		{URL: "/img/c.jpg", Type: domain.MediaImage, Order: 2},
		{URL: "/img/a.jpg", Type: domain.MediaImage, Order: 0},
		{URL: "/img/b.mp4", Type: domain.MediaVideo, Order: 1},
	}
}

func TestRemoveMediaRenumbers(t *testing.T) {
	out, err := catalog.RemoveMedia(gallery(), 1)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "/img/a.jpg", out[0].URL)
	assert.Equal(t, 0, out[0].Order)
	assert.Equal(t, "/img/c.jpg", out[1].URL)
	assert.Equal(t, 1, out[1].Order)
}

func TestRemoveMediaBadIndex(t *testing.T) {
	for _, i := range []int{-1, 3} {
		_, err := catalog.RemoveMedia(gallery(), i)
		ve, ok := domain.IsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "index", ve.Field)
	}
}

func TestSortMediaLeavesInputAlone(t *testing.T) {
	in := gallery()
	out := catalog.SortMedia(in)
	assert.Equal(t, []string{"/img/a.jpg", "/img/b.mp4", "/img/c.jpg"},
		[]string{out[0].URL, out[1].URL, out[2].URL})
	assert.Equal(t, "/img/c.jpg", in[0].URL)
}
