package ml

import (
	"math/rand"
	"sort"
)

// Node is one node of a CART tree. Leaves carry the mean target of their
// training samples, which doubles as the class probability on 0/1 targets.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      *Node   `json:"l,omitempty"`
	Right     *Node   `json:"r,omitempty"`
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"v"`
}

// Predict walks the tree for one feature vector
func (n *Node) Predict(x []float64) float64 {
	node := n
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

type treeBuilder struct {
	x        [][]float64
	y        []float64
	maxDepth int
	minLeaf  int
	mtry     int
	rng      *rand.Rand
}

func (b *treeBuilder) build(samples []int, depth int) *Node {
	if depth >= b.maxDepth || len(samples) < 2*b.minLeaf || constantTarget(b.y, samples) {
		return &Node{Leaf: true, Value: mean(b.y, samples)}
	}

	feature, threshold, ok := b.bestSplit(samples)
	if !ok {
		return &Node{Leaf: true, Value: mean(b.y, samples)}
	}

	var left, right []int
	for _, i := range samples {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minLeaf || len(right) < b.minLeaf {
		return &Node{Leaf: true, Value: mean(b.y, samples)}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

// bestSplit scans a random feature subset for the threshold minimizing the
// weighted sum-of-squares of the children. On 0/1 targets this is the same
// ordering as the Gini criterion, so one impurity serves both tree kinds.
func (b *treeBuilder) bestSplit(samples []int) (int, float64, bool) {
	numFeatures := len(b.x[0])
	candidates := b.rng.Perm(numFeatures)
	if b.mtry < len(candidates) {
		candidates = candidates[:b.mtry]
	}

	bestScore := parentSSE(b.y, samples)
	bestFeature := -1
	bestThreshold := 0.0
	found := false

	for _, f := range candidates {
		ordered := make([]int, len(samples))
		copy(ordered, samples)
		sort.Slice(ordered, func(i, j int) bool {
			return b.x[ordered[i]][f] < b.x[ordered[j]][f]
		})

		// running sums from the left; evaluate each distinct boundary
		var leftSum, leftSq float64
		totalSum, totalSq := sums(b.y, samples)
		n := float64(len(ordered))

		for k := 0; k < len(ordered)-1; k++ {
			yi := b.y[ordered[k]]
			leftSum += yi
			leftSq += yi * yi

			if b.x[ordered[k]][f] == b.x[ordered[k+1]][f] {
				continue
			}

			nl := float64(k + 1)
			nr := n - nl
			sse := (leftSq - leftSum*leftSum/nl) +
				((totalSq - leftSq) - (totalSum-leftSum)*(totalSum-leftSum)/nr)

			if sse < bestScore {
				bestScore = sse
				bestFeature = f
				bestThreshold = (b.x[ordered[k]][f] + b.x[ordered[k+1]][f]) / 2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func sums(y []float64, samples []int) (sum, sq float64) {
	for _, i := range samples {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sum, sq
}

func parentSSE(y []float64, samples []int) float64 {
	sum, sq := sums(y, samples)
	n := float64(len(samples))
	return sq - sum*sum/n
}

func mean(y []float64, samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range samples {
		sum += y[i]
	}
	return sum / float64(len(samples))
}

func constantTarget(y []float64, samples []int) bool {
	for _, i := range samples[1:] {
		if y[i] != y[samples[0]] {
			return false
		}
	}
	return true
}
