package vocabtree

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/kuandriy/vocabtree/internal/dataset"
	"github.com/kuandriy/vocabtree/internal/descriptor"
	"github.com/kuandriy/vocabtree/internal/kmeans"
	"github.com/kuandriy/vocabtree/internal/logx"
)

// TrainConfig holds the Tree Builder's two configuration parameters.
type TrainConfig struct {
	Split uint32
	Depth uint32
}

// trainedImage pairs an image ID with its successfully loaded descriptor
// matrix, surviving the skip-on-missing-file pass.
type trainedImage struct {
	id  uint64
	mat descriptor.Matrix
}

// workItem is one entry of the explicit construction stack: the node being
// populated, its tree coordinates, and the rows of the merged matrix
// routed to it by its parent's clustering step.
type workItem struct {
	index      uint32
	level      uint32
	levelIndex uint32
	data       descriptor.Matrix
}

// Train builds a fully initialized Tree: hierarchical k-means over every
// training image's merged descriptors, followed by a post-build indexing
// pass that populates inverted files, per-image database vectors, and IDF
// weights.
//
// Train fails only on I/O errors surfaced by loader; a missing descriptor
// file for a given image is not such a failure — that image is skipped
// with a warning on log, exactly as an empty descriptor file would be.
func Train(ds dataset.Dataset, loader dataset.Loader, cfg TrainConfig, km kmeans.Config, rng *rand.Rand, log logx.Logger) (*Tree, error) {
	if log == nil {
		log = logx.Nop{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	images := ds.Images()
	rng.Shuffle(len(images), func(i, j int) { images[i], images[j] = images[j], images[i] })

	var trainingSet []trainedImage
	var mats []descriptor.Matrix
	dim := 0
	for _, img := range images {
		m, err := loader.Load(ds.Location(img.FeaturePath()))
		if err == dataset.ErrNotFound {
			log.Warnf("vocabtree: skipping image %d, no descriptor file", img.ID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("vocabtree: load descriptors for image %d: %w", img.ID, err)
		}
		if m.Rows == 0 {
			log.Warnf("vocabtree: skipping image %d, empty descriptor file", img.ID)
			continue
		}
		trainingSet = append(trainingSet, trainedImage{id: img.ID, mat: m})
		mats = append(mats, m)
		if dim == 0 {
			dim = m.Cols
		}
	}

	merged := descriptor.Merge(mats)
	t := newEmptyTree(cfg.Split, cfg.Depth, dim)

	stack := []workItem{{index: 0, level: 0, levelIndex: 0, data: merged}}
	for len(stack) > 0 {
		wi := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &t.Nodes[wi.index]
		node.Level = wi.level
		node.LevelIndex = wi.levelIndex

		if wi.level == cfg.Depth-1 {
			node.FirstChildIndex = noChild
			continue
		}

		firstChild := firstChildIndexFor(cfg.Split, wi.level, wi.levelIndex)
		node.FirstChildIndex = firstChild

		groups := make([]descriptor.Matrix, cfg.Split)
		if wi.data.Rows > 0 {
			res, err := kmeans.Cluster(wi.data, int(cfg.Split), km)
			if err != nil {
				return nil, fmt.Errorf("vocabtree: cluster node %d: %w", wi.index, err)
			}
			counts := make([]int, cfg.Split)
			for _, lbl := range res.Labels {
				if int(lbl) < len(counts) {
					counts[lbl]++
				}
			}
			for c := 0; c < int(cfg.Split); c++ {
				groups[c] = descriptor.New(counts[c], wi.data.Cols)
				if c < res.Centers.Rows {
					copy(t.Nodes[firstChild+uint32(c)].Mean, res.Centers.Row(c))
				}
			}
			next := make([]int, cfg.Split)
			for i, lbl := range res.Labels {
				if int(lbl) >= len(groups) {
					continue
				}
				copy(groups[lbl].Row(next[lbl]), wi.data.Row(i))
				next[lbl]++
			}
		} else {
			for c := 0; c < int(cfg.Split); c++ {
				groups[c] = descriptor.Matrix{Cols: wi.data.Cols}
			}
		}

		for c := uint32(0); c < cfg.Split; c++ {
			stack = append(stack, workItem{
				index:      firstChild + c,
				level:      wi.level + 1,
				levelIndex: wi.levelIndex*cfg.Split + c,
				data:       groups[c],
			})
		}
	}

	if err := indexTrainingSetAndDeriveWeights(t, trainingSet); err != nil {
		return nil, err
	}
	log.Infof("vocabtree: trained tree split=%d depth=%d nodes=%d images=%d", cfg.Split, cfg.Depth, t.NumberOfNodes, len(trainingSet))
	return t, nil
}

func indexTrainingSetAndDeriveWeights(t *Tree, trainingSet []trainedImage) error {
	df := make([]uint32, t.NumberOfNodes)
	for _, img := range trainingSet {
		visits, _ := quantize(t, rowsOf(img.mat), modeIndex, img.id)
		vec := make([]float32, len(visits))
		for n, v := range visits {
			vec[n] = float32(v)
			if v > 0 {
				df[n]++
			}
		}
		t.DatabaseVectors[img.id] = vec
	}

	trainingSize := len(trainingSet)
	for n := range t.Weights {
		if df[n] == 0 || trainingSize == 0 {
			// ln(0) = -Inf; clamp to 0 so a later multiplication can never
			// produce NaN (-Inf * 0). Documented open-contract decision.
			t.Weights[n] = 0
			continue
		}
		t.Weights[n] = float32(math.Log(float64(df[n]) / float64(trainingSize)))
	}

	for id, vec := range t.DatabaseVectors {
		for n := range vec {
			vec[n] *= t.Weights[n]
		}
		normalizeL2(vec)
		t.DatabaseVectors[id] = vec
	}
	return nil
}

func rowsOf(m descriptor.Matrix) [][]float32 {
	rows := make([][]float32, m.Rows)
	for i := 0; i < m.Rows; i++ {
		rows[i] = m.Row(i)
	}
	return rows
}
