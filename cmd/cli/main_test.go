package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
  {"id": 1, "title": "Red Winter Jacket", "description": "Warm padded jacket", "category": "men's clothing", "price": 35, "rating": {"rate": 4.2, "count": 120}},
  {"id": 2, "title": "Blue Denim Jacket", "description": "Classic denim", "category": "men's clothing", "price": 55, "rating": {"rate": 3.9, "count": 80}},
  {"id": 3, "title": "Gold Ring", "description": "Plated ring", "category": "jewelery", "price": 12, "rating": {"rate": 4.6, "count": 400}}
]`

func setupFileCatalog(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o600))

	t.Setenv("CATALOG_SOURCE", "file")
	t.Setenv("CATALOG_FILE", path)
	t.Setenv("LOG_LEVEL", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSearchCommandJSON(t *testing.T) {
	setupFileCatalog(t)

	out, err := run(t, "search", "--json", "red", "jacket")
	require.NoError(t, err)

	var got struct {
		Success    bool `json:"success"`
		TotalFound int  `json:"totalFound"`
		Data       []struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Success)
	require.NotEmpty(t, got.Data)
	assert.Equal(t, 1, got.Data[0].ID)
}

func TestSearchCommandClassifiedFlags(t *testing.T) {
	setupFileCatalog(t)

	out, err := run(t, "search", "--json", "--category", "jewelery", "--limit", "1")
	require.NoError(t, err)

	var got struct {
		Data []struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Data, 1)
	assert.Equal(t, 3, got.Data[0].ID)
}

func TestSearchCommandText(t *testing.T) {
	setupFileCatalog(t)

	out, err := run(t, "search", "--no-color", "--sort", "price-low", "jacket")
	require.NoError(t, err)
	assert.Contains(t, out, "Red Winter Jacket")
	assert.Contains(t, out, "sort=price-low")
}

func TestSearchCommandRequiresInput(t *testing.T) {
	setupFileCatalog(t)

	_, err := run(t, "search")
	assert.Error(t, err)

	_, err = run(t, "search", "--sort", "cheapest", "jacket")
	assert.Error(t, err)
}

func TestParseCommandOffline(t *testing.T) {
	setupFileCatalog(t)

	out, err := run(t, "parse", "--offline", "--json", "red", "dress", "under", "50")
	require.NoError(t, err)

	var got struct {
		PriceRange struct {
			Max *float64 `json:"max"`
		} `json:"priceRange"`
		Attributes struct {
			Colors []string `json:"colors"`
		} `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.PriceRange.Max)
	assert.Equal(t, 50.0, *got.PriceRange.Max)
	assert.Contains(t, got.Attributes.Colors, "red")
}

func TestMatchCommand(t *testing.T) {
	setupFileCatalog(t)

	out, err := run(t, "match", "--json", "show", "my", "cart")
	require.NoError(t, err)

	var got struct {
		Handlers        []string `json:"handlers"`
		AppliedFallback bool     `json:"appliedFallback"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"cart.view"}, got.Handlers)
	assert.True(t, got.AppliedFallback)

	out, err = run(t, "match", "--no-color", "hello", "there")
	require.NoError(t, err)
	assert.Contains(t, out, "no UI intent matched")
}

func TestDBCommandRequiresDatabaseURL(t *testing.T) {
	setupFileCatalog(t)
	t.Setenv("DATABASE_URL", "")

	_, err := run(t, "db", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
