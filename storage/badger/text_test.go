package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"stems and drops stop words", "The running connections!", []string{"run", "connect"}},
		{"drops single characters", "a b c go", []string{"go"}},
		{"splits on punctuation", "pip-install, config.yaml", []string{"pip", "instal", "config", "yaml"}},
		{"keeps digits", "python 3.12", []string{"python", "12"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenize(tt.input))
		})
	}
}

func TestBM25Scores(t *testing.T) {
	docs := []termStats{
		newTermStats("install the package with pip"),
		newTermStats("configure logging levels"),
		newTermStats("pip pip pip"),
	}

	scores := bm25Scores(tokenize("pip"), docs)

	assert.Greater(t, scores[0], 0.0)
	assert.Zero(t, scores[1])
	assert.Greater(t, scores[2], scores[0], "higher term frequency scores higher")
}

func TestBM25Scores_NoDocuments(t *testing.T) {
	assert.Empty(t, bm25Scores([]string{"pip"}, nil))
}

func TestBM25Scores_RareTermWeighsMore(t *testing.T) {
	docs := []termStats{
		newTermStats("common rare"),
		newTermStats("common words"),
		newTermStats("common text"),
	}

	common := bm25Scores(tokenize("common"), docs)
	rare := bm25Scores(tokenize("rare"), docs)

	assert.Greater(t, rare[0], common[0])
}
