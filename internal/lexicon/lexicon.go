// Package lexicon maps user-typed coin aliases (symbols and names) to the
// upstream's canonical coin ids.
package lexicon

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAliases is the built-in alias table.
var DefaultAliases = map[string]string{
	"bitcoin":   "bitcoin",
	"btc":       "bitcoin",
	"ethereum":  "ethereum",
	"eth":       "ethereum",
	"cardano":   "cardano",
	"ada":       "cardano",
	"solana":    "solana",
	"sol":       "solana",
	"dogecoin":  "dogecoin",
	"doge":      "dogecoin",
	"ripple":    "ripple",
	"xrp":       "ripple",
	"litecoin":  "litecoin",
	"ltc":       "litecoin",
	"chainlink": "chainlink",
	"link":      "chainlink",
}

// minAliasLen drops one-letter symbols, which would match almost any text.
const minAliasLen = 2

type entry struct {
	alias string
	id    string
}

// Lexicon is immutable after construction and safe for concurrent use.
type Lexicon struct {
	entries []entry
}

// New builds a lexicon from alias -> id pairs. Matching tries longer aliases
// first so "solana" wins over "sol"; equal lengths fall back to alphabetical
// order, which keeps resolution deterministic.
func New(aliases map[string]string) *Lexicon {
	entries := make([]entry, 0, len(aliases))
	for alias, id := range aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		id = strings.ToLower(strings.TrimSpace(id))
		if len(alias) < minAliasLen || id == "" {
			continue
		}
		entries = append(entries, entry{alias: alias, id: id})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].alias) != len(entries[j].alias) {
			return len(entries[i].alias) > len(entries[j].alias)
		}
		return entries[i].alias < entries[j].alias
	})
	return &Lexicon{entries: entries}
}

// Default returns a lexicon over DefaultAliases.
func Default() *Lexicon {
	return New(DefaultAliases)
}

// Resolve returns the canonical id of the first alias contained in token.
func (l *Lexicon) Resolve(token string) (string, bool) {
	text := strings.ToLower(token)
	for _, e := range l.entries {
		if strings.Contains(text, e.alias) {
			return e.id, true
		}
	}
	return "", false
}

func (l *Lexicon) Len() int {
	return len(l.entries)
}

// Aliases returns a copy of the alias table.
func (l *Lexicon) Aliases() map[string]string {
	out := make(map[string]string, len(l.entries))
	for _, e := range l.entries {
		out[e.alias] = e.id
	}
	return out
}

// File is the on-disk alias file layout.
type File struct {
	Aliases map[string]string `yaml:"aliases"`
}

// Load returns the default lexicon extended with the aliases in path. An
// empty path yields the defaults. Built-in aliases win over file entries.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse alias file: %w", err)
	}

	merged := make(map[string]string, len(f.Aliases)+len(DefaultAliases))
	for alias, id := range f.Aliases {
		merged[strings.ToLower(alias)] = id
	}
	for alias, id := range DefaultAliases {
		merged[alias] = id
	}
	return New(merged), nil
}

// Write stores aliases in the layout Load reads.
func Write(path string, aliases map[string]string) error {
	data, err := yaml.Marshal(File{Aliases: aliases})
	if err != nil {
		return fmt.Errorf("encode alias file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write alias file: %w", err)
	}
	return nil
}
