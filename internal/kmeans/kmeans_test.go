package kmeans

import (
	"math/rand"
	"testing"

	"github.com/kuandriy/vocabtree/internal/descriptor"
)

func buildMatrix(rows [][]float32) descriptor.Matrix {
	cols := len(rows[0])
	m := descriptor.New(len(rows), cols)
	for i, row := range rows {
		copy(m.Row(i), row)
	}
	return m
}

func TestClusterSeparatesObviousGroups(t *testing.T) {
	m := buildMatrix([][]float32{
		{0, 0}, {0, 1}, {1, 0},
		{100, 100}, {100, 101}, {101, 100},
	})
	cfg := Config{MaxIterations: 16, Epsilon: 1e-4, Attempts: 3, Rand: rand.New(rand.NewSource(42))}

	res, err := Cluster(m, 2, cfg)
	if err != nil {
		t.Fatalf("Cluster returned error: %v", err)
	}
	if len(res.Labels) != 6 {
		t.Fatalf("len(Labels) = %d, want 6", len(res.Labels))
	}
	for i := 0; i < 3; i++ {
		if res.Labels[i] != res.Labels[0] {
			t.Errorf("row %d label = %d, want same cluster as row 0", i, res.Labels[i])
		}
	}
	for i := 3; i < 6; i++ {
		if res.Labels[i] != res.Labels[3] {
			t.Errorf("row %d label = %d, want same cluster as row 3", i, res.Labels[i])
		}
	}
	if res.Labels[0] == res.Labels[3] {
		t.Error("the two obvious groups were assigned the same label")
	}
}

func TestClusterEmptyMatrix(t *testing.T) {
	_, err := Cluster(descriptor.Matrix{}, 2, DefaultConfig())
	if err != ErrEmptyMatrix {
		t.Errorf("err = %v, want ErrEmptyMatrix", err)
	}
}

func TestClusterKLargerThanRows(t *testing.T) {
	m := buildMatrix([][]float32{{1, 1}, {2, 2}})
	res, err := Cluster(m, 5, DefaultConfig())
	if err != nil {
		t.Fatalf("Cluster returned error: %v", err)
	}
	if res.Centers.Rows != 2 {
		t.Errorf("Centers.Rows = %d, want 2 (clamped to row count)", res.Centers.Rows)
	}
}

func TestClusterDeterministicWithFixedSeed(t *testing.T) {
	m := buildMatrix([][]float32{
		{0, 0}, {0, 1}, {1, 0},
		{50, 50}, {50, 51}, {51, 50},
	})
	cfg1 := Config{MaxIterations: 16, Epsilon: 1e-4, Attempts: 1, Rand: rand.New(rand.NewSource(7))}
	cfg2 := Config{MaxIterations: 16, Epsilon: 1e-4, Attempts: 1, Rand: rand.New(rand.NewSource(7))}

	r1, _ := Cluster(m, 2, cfg1)
	r2, _ := Cluster(m, 2, cfg2)

	for i := range r1.Labels {
		if r1.Labels[i] != r2.Labels[i] {
			t.Fatalf("labels diverged at row %d with identical seeds", i)
		}
	}
}
