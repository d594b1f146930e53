package service

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"

	"github.com/bibbank/fraudml/internal/domain/model"
)

// StratifiedSplitter partitions records into train and held-out sets with
// the same class proportions.
type StratifiedSplitter struct {
	testSize float64
	seed     int64
}

// NewStratifiedSplitter creates a splitter holding out testSize of the rows.
func NewStratifiedSplitter(testSize float64, seed int64) (*StratifiedSplitter, error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, fmt.Errorf("test size must be within (0, 1), got %v", testSize)
	}
	return &StratifiedSplitter{testSize: testSize, seed: seed}, nil
}

// Split returns the train and held-out partitions. The held-out partition has
// ceil(testSize*n) rows, apportioned to classes by largest remainder. Rows
// keep their input order within each partition.
func (s *StratifiedSplitter) Split(records []model.FeatureRecord) (train, test []model.FeatureRecord, err error) {
	n := len(records)
	byClass := map[int][]int{}
	for i, r := range records {
		byClass[r.IsFraud] = append(byClass[r.IsFraud], i)
	}

	classes := make([]int, 0, len(byClass))
	for c, idx := range byClass {
		if len(idx) < 2 {
			return nil, nil, fmt.Errorf("class %d has %d member(s), at least 2 are required to stratify", c, len(idx))
		}
		classes = append(classes, c)
	}
	sort.Ints(classes)

	nTest := int(math.Ceil(s.testSize * float64(n)))
	if nTest < len(classes) || n-nTest < len(classes) {
		return nil, nil, fmt.Errorf("cannot split %d rows into %d held-out rows across %d classes", n, nTest, len(classes))
	}

	alloc := allocate(nTest, n, classes, byClass)

	rng := rand.New(rand.NewSource(s.seed)) //nolint:gosec // reproducible split
	testIdx := make([]int, 0, nTest)
	for _, c := range classes {
		idx := slices.Clone(byClass[c])
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		testIdx = append(testIdx, idx[:alloc[c]]...)
	}

	held := make([]bool, n)
	for _, i := range testIdx {
		held[i] = true
	}
	train = make([]model.FeatureRecord, 0, n-nTest)
	test = make([]model.FeatureRecord, 0, nTest)
	for i, r := range records {
		if held[i] {
			test = append(test, r)
		} else {
			train = append(train, r)
		}
	}
	return train, test, nil
}

// allocate apportions nTest held-out rows to classes proportionally. Every
// class keeps at least one row on each side.
func allocate(nTest, n int, classes []int, byClass map[int][]int) map[int]int {
	type share struct {
		class     int
		remainder float64
	}

	alloc := make(map[int]int, len(classes))
	shares := make([]share, 0, len(classes))
	assigned := 0
	for _, c := range classes {
		exact := float64(nTest) * float64(len(byClass[c])) / float64(n)
		k := int(math.Floor(exact))
		alloc[c] = k
		assigned += k
		shares = append(shares, share{class: c, remainder: exact - float64(k)})
	}

	sort.SliceStable(shares, func(i, j int) bool { return shares[i].remainder > shares[j].remainder })
	for i := 0; assigned < nTest; i = (i + 1) % len(shares) {
		c := shares[i].class
		if alloc[c] < len(byClass[c])-1 {
			alloc[c]++
			assigned++
		}
	}

	for _, c := range classes {
		if alloc[c] == 0 {
			// Take one from the largest allocation.
			donor := classes[0]
			for _, d := range classes {
				if alloc[d] > alloc[donor] {
					donor = d
				}
			}
			alloc[donor]--
			alloc[c] = 1
		}
	}
	return alloc
}
