package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is a canned question/answer pair.
type Entry struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

//go:embed seed.yaml
var seedYAML []byte

var ErrEmptyKnowledgeBase = errors.New("knowledge base has no entries")

type document struct {
	Entries []Entry `yaml:"entries"`
}

// Seed returns the built-in question/answer pairs in their canonical order.
func Seed() []Entry {
	entries, err := Parse(seedYAML)
	if err != nil {
		panic(fmt.Sprintf("knowledge: embedded seed is invalid: %v", err))
	}
	return entries
}

// Parse decodes a YAML document of the form `entries: [{question, answer}]`.
func Parse(data []byte) ([]Entry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode knowledge base: %w", err)
	}
	if len(doc.Entries) == 0 {
		return nil, ErrEmptyKnowledgeBase
	}

	for i, entry := range doc.Entries {
		if strings.TrimSpace(entry.Question) == "" || strings.TrimSpace(entry.Answer) == "" {
			return nil, fmt.Errorf("knowledge base entry %d: question and answer are required", i)
		}
	}
	return doc.Entries, nil
}

// LoadFile reads a knowledge base from disk, replacing the built-in seed.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base %s: %w", path, err)
	}
	return Parse(data)
}
