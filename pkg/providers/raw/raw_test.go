package raw

import (
	"context"
	"testing"

	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateEchoes(t *testing.T) {
	resp, err := New().Translate(context.Background(), &providers.ProviderRequest{
		Text:           "Kubernetes",
		SourceLanguage: "en",
		TargetLanguage: "ru",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kubernetes", resp.Text)
	assert.Equal(t, "ru", resp.TargetLang)
	assert.Equal(t, "raw", New().GetName())
}

func TestTranslateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Translate(ctx, &providers.ProviderRequest{Text: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
