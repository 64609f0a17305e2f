package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"wrapstudio/internal/domain"
)

func TestReferenceImageURL(t *testing.T) {
	tests := []struct {
		name    string
		modelID string
		want    string
	}{
		{name: "single cold", modelID: "single-cold", want: "https://i.imgur.com/wzKkCcR.png"},
		{name: "double hot", modelID: "double-hot", want: "https://i.imgur.com/SaBAdqf.png"},
		{name: "case insensitive", modelID: "Double-HOT", want: "https://i.imgur.com/SaBAdqf.png"},
		{name: "unknown falls back", modelID: "triple-warm", want: FallbackImageURL},
		{name: "empty falls back", modelID: "", want: FallbackImageURL},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ReferenceImageURL(tc.modelID))
		})
	}
}

func TestLookups(t *testing.T) {
	m, err := ModelByID(ModelSingleCold)
	require.NoError(t, err)
	require.Equal(t, "Single Cold Model", m.Name)

	_, err = ModelByID("nope")
	require.True(t, errors.Is(err, domain.ErrNotFound))

	th, err := ThemeByID("eco-bright")
	require.NoError(t, err)
	require.Equal(t, "Eco Bright", th.Name)

	_, err = ThemeByID("neon")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogCopiesAreIndependent(t *testing.T) {
	list := Themes()
	list[0].Name = "mutated"
	require.Equal(t, "Fresh Aqua", Themes()[0].Name)
	require.Len(t, Models(), 2)
	require.Len(t, Themes(), 3)
}

func TestPreviewImageURL(t *testing.T) {
	model := domain.TrailerModel{ID: ModelDoubleHot, ImageURL: "https://i.imgur.com/SaBAdqf.png"}

	require.Equal(t, "data:image/png;base64,AA==", PreviewImageURL("data:image/png;base64,AA==", &model))
	require.Equal(t, model.ImageURL, PreviewImageURL("", &model))
	require.Equal(t, FallbackImageURL, PreviewImageURL("", nil))

	require.True(t, ShowPlaceholder(false, nil))
	require.False(t, ShowPlaceholder(true, nil))
	require.False(t, ShowPlaceholder(false, &model))
}
