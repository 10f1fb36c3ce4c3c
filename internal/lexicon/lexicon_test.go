package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/coinchat/internal/models"
)

func TestResolve_KnownAliases(t *testing.T) {
	lex := Default()

	cases := map[string]string{
		"btc":                  "bitcoin",
		"What about Bitcoin?":  "bitcoin",
		"ETH":                  "ethereum",
		"tell me about solana": "solana",
		"doge to the moon":     "dogecoin",
		"xrp":                  "ripple",
		"chainlink":            "chainlink",
	}
	for input, want := range cases {
		got, ok := lex.Resolve(input)
		require.True(t, ok, "expected %q to resolve", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestResolve_Unknown(t *testing.T) {
	_, ok := Default().Resolve("hello world")
	assert.False(t, ok)

	_, ok = Default().Resolve("")
	assert.False(t, ok)
}

func TestResolve_LongestAliasWins(t *testing.T) {
	lex := Default()

	got, _ := lex.Resolve("ethereum or btc")
	assert.Equal(t, "ethereum", got, "8-letter alias beats 3-letter alias")

	got, _ = lex.Resolve("sol vs cardano")
	assert.Equal(t, "cardano", got)
}

func TestResolve_EqualLengthIsAlphabetical(t *testing.T) {
	got, _ := Default().Resolve("eth and btc")
	assert.Equal(t, "bitcoin", got, "btc sorts before eth")
}

func TestResolve_EveryAliasProperty(t *testing.T) {
	lex := Default()
	aliases := make([]interface{}, 0, len(DefaultAliases))
	for alias := range DefaultAliases {
		aliases = append(aliases, alias)
	}

	properties := gopter.NewProperties(nil)
	properties.Property("an alias resolves to its id in any case", prop.ForAll(
		func(alias string, upper bool) bool {
			token := alias
			if upper {
				token = strings.ToUpper(alias)
			}
			got, ok := lex.Resolve(token)
			return ok && got == DefaultAliases[alias]
		},
		gen.OneConstOf(aliases...),
		gen.Bool(),
	))
	properties.TestingRun(t)
}

func TestNew_DropsShortAliases(t *testing.T) {
	lex := New(map[string]string{"a": "alpha", "bb": "beta", "": "x", "cc": ""})
	assert.Equal(t, 1, lex.Len())

	got, ok := lex.Resolve("xbbx")
	require.True(t, ok)
	assert.Equal(t, "beta", got)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	lex, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, len(DefaultAliases), lex.Len())
}

func TestLoad_MergesFileAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, Write(path, map[string]string{
		"pepe": "pepe",
		"a":    "skipped",
		"btc":  "not-bitcoin",
	}))

	lex, err := Load(path)
	require.NoError(t, err)

	got, ok := lex.Resolve("buy PEPE")
	require.True(t, ok)
	assert.Equal(t, "pepe", got)

	got, _ = lex.Resolve("btc")
	assert.Equal(t, "bitcoin", got, "built-in aliases win over the file")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aliases: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestFromListings(t *testing.T) {
	aliases := FromListings([]models.CoinListing{
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
		{ID: "bitcoin-clone", Symbol: "btc", Name: "Bitcoin Clone"},
		{ID: "x-token", Symbol: "x", Name: "X Token"},
		{ID: "", Symbol: "nil", Name: "Nil"},
	})

	assert.Equal(t, "bitcoin", aliases["btc"], "first listing keeps a shared symbol")
	assert.Equal(t, "bitcoin", aliases["bitcoin"])
	assert.Equal(t, "bitcoin-clone", aliases["bitcoin clone"])
	assert.Equal(t, "x-token", aliases["x token"])
	_, hasX := aliases["x"]
	assert.False(t, hasX)
	_, hasNil := aliases["nil"]
	assert.False(t, hasNil)
}
