// Package retrieval expresses the "swap the index implementation"
// capability as a small interface rather than an inheritance hierarchy:
// Engine covers save and search, and each engine supplies its own train
// and load constructors (here TrainVocabTree and LoadVocabTree). The
// vocabulary tree is the only Engine this repository ships. Of the CLI,
// only the search command goes through this package; train and inspect
// call the vocabtree package directly.
package retrieval

import (
	"math/rand"

	"github.com/kuandriy/vocabtree/internal/dataset"
	"github.com/kuandriy/vocabtree/internal/kmeans"
	"github.com/kuandriy/vocabtree/internal/vocabtree"
)

// Match is a single ranked search result.
type Match = vocabtree.Match

// Engine is the capability every retrieval index in this repository (today:
// only the vocabulary tree) offers.
type Engine interface {
	Save(path string) error
	Search(queryDescriptors [][]float32, amountToReturn uint32) []Match
}

// VocabTreeEngine adapts *vocabtree.Tree to Engine.
type VocabTreeEngine struct {
	Tree *vocabtree.Tree
}

// TrainVocabTree trains a fresh vocabulary tree and wraps it as an Engine.
func TrainVocabTree(ds dataset.Dataset, loader dataset.Loader, cfg vocabtree.TrainConfig, km kmeans.Config, rng *rand.Rand) (*VocabTreeEngine, error) {
	t, err := vocabtree.Train(ds, loader, cfg, km, rng, nil)
	if err != nil {
		return nil, err
	}
	return &VocabTreeEngine{Tree: t}, nil
}

// LoadVocabTree loads a persisted vocabulary tree and wraps it as an Engine.
func LoadVocabTree(path string) (*VocabTreeEngine, error) {
	t, err := vocabtree.Load(path)
	if err != nil {
		return nil, err
	}
	return &VocabTreeEngine{Tree: t}, nil
}

func (e *VocabTreeEngine) Save(path string) error {
	return vocabtree.Save(e.Tree, path)
}

func (e *VocabTreeEngine) Search(queryDescriptors [][]float32, amountToReturn uint32) []Match {
	return vocabtree.Search(e.Tree, queryDescriptors, vocabtree.SearchConfig{AmountToReturn: amountToReturn})
}
