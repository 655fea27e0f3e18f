package gen

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

func writeStyleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "styles.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSampleCapsPerCategory(t *testing.T) {
	path := writeStyleFile(t, `{
		"hooks":{"examples":["a","b","c","d","e"]},
		"closers":{"examples":["x"]}
	}`)
	bank, err := LoadStyleBank(path)
	assert.Equal(t, err, nil)
	bank.rng = rand.New(rand.NewSource(1))

	sampled := bank.Sample(3)
	assert.Equal(t, len(sampled["hooks"]), 3)
	assert.Equal(t, len(sampled["closers"]), 1)
	assert.Equal(t, sampled["closers"][0], "x")
}

func TestInstructionsBlockStableCategoryOrder(t *testing.T) {
	path := writeStyleFile(t, `{
		"zingers":{"examples":["z1"]},
		"anecdotes":{"examples":["a1"]}
	}`)
	bank, err := LoadStyleBank(path)
	assert.Equal(t, err, nil)

	block := bank.InstructionsBlock(3)
	anecdotes := strings.Index(block, "Examples of anecdotes:")
	zingers := strings.Index(block, "Examples of zingers:")
	assert.Equal(t, anecdotes >= 0, true)
	assert.Equal(t, zingers > anecdotes, true)
	assert.Equal(t, strings.Contains(block, "- a1"), true)
}

func TestLoadStyleBankEmpty(t *testing.T) {
	path := writeStyleFile(t, `{"hooks":{"examples":[]}}`)

	_, err := LoadStyleBank(path)
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}
