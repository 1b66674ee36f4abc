package goquery_test

import (
	"testing"

	"github.com/fwojciec/passage"
	"github.com/fwojciec/passage/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataExtractor_ExtractMetadata(t *testing.T) {
	t.Parallel()

	t.Run("prefers og:title over every other source", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
<title>Document Title</title>
<meta name="twitter:title" content="Twitter Title">
<meta property="og:title" content="OG Title">
</head><body><h1>Heading</h1></body></html>`

		ext, err := goquery.NewMetadataExtractor()
		require.NoError(t, err)

		meta, err := ext.ExtractMetadata(html, "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "OG Title", meta.Title)
	})

	t.Run("falls through the title priority chain", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			html string
			want string
		}{
			{
				name: "twitter:title",
				html: `<head><title>Doc</title><meta name="twitter:title" content="Tweet"></head><body><h1>H</h1></body>`,
				want: "Tweet",
			},
			{
				name: "h1",
				html: `<head><title>Doc</title><meta property="og:title" content="  "></head><body><h1>First</h1><h1>Second</h1></body>`,
				want: "First",
			},
			{
				name: "title element",
				html: `<head><title>Doc</title></head><body><p>No heading</p></body>`,
				want: "Doc",
			},
			{
				name: "none",
				html: `<body><p>Nothing</p></body>`,
				want: "",
			},
		}

		ext, err := goquery.NewMetadataExtractor()
		require.NoError(t, err)

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				meta, err := ext.ExtractMetadata(tt.html, "https://example.com/a")

				require.NoError(t, err)
				assert.Equal(t, tt.want, meta.Title)
			})
		}
	})

	t.Run("collapses whitespace and strips site suffixes", func(t *testing.T) {
		t.Parallel()

		html := `<head><title>  Setting up
			webhooks | Acme HELP center </title></head>`

		ext, err := goquery.NewMetadataExtractor(`\s*\|\s*Acme Help Center`, `\s*\|\s*Guide`)
		require.NoError(t, err)

		meta, err := ext.ExtractMetadata(html, "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "Setting up webhooks", meta.Title)
	})

	t.Run("skips a source that is only a suffix", func(t *testing.T) {
		t.Parallel()

		html := `<head><meta property="og:title" content="| Acme"></head><body><h1>Real title</h1></body>`

		ext, err := goquery.NewMetadataExtractor(`\s*\|\s*Acme`)
		require.NoError(t, err)

		meta, err := ext.ExtractMetadata(html, "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "Real title", meta.Title)
	})

	t.Run("resolves relative canonical links", func(t *testing.T) {
		t.Parallel()

		html := `<head><link rel="stylesheet" href="/s.css"><link rel="Canonical" href="/docs/intro"></head>`

		ext, err := goquery.NewMetadataExtractor()
		require.NoError(t, err)

		meta, err := ext.ExtractMetadata(html, "https://example.com/docs/intro?ref=nav")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/docs/intro", meta.CanonicalURL)
	})

	t.Run("accepts canonical within a rel list", func(t *testing.T) {
		t.Parallel()

		html := `<head><link rel="alternate canonical" href="https://docs.example.com/x"></head>`

		ext, err := goquery.NewMetadataExtractor()
		require.NoError(t, err)

		meta, err := ext.ExtractMetadata(html, "https://example.com/x")

		require.NoError(t, err)
		assert.Equal(t, "https://docs.example.com/x", meta.CanonicalURL)
	})

	t.Run("leaves canonical empty when absent", func(t *testing.T) {
		t.Parallel()

		ext, err := goquery.NewMetadataExtractor()
		require.NoError(t, err)

		meta, err := ext.ExtractMetadata(`<head><title>T</title></head>`, "https://example.com/x")

		require.NoError(t, err)
		assert.Empty(t, meta.CanonicalURL)
	})
}

func TestNewMetadataExtractor(t *testing.T) {
	t.Parallel()

	_, err := goquery.NewMetadataExtractor(`(`)

	require.Error(t, err)
	assert.Equal(t, passage.EINVALID, passage.ErrorCode(err))
}
