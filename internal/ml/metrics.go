package ml

import (
	"math/rand"
	"sort"
)

// RSquared computes the coefficient of determination of predictions
// against observed values
func RSquared(predicted, actual []float64) float64 {
	if len(actual) == 0 || len(predicted) != len(actual) {
		return 0
	}

	meanActual := 0.0
	for _, v := range actual {
		meanActual += v
	}
	meanActual /= float64(len(actual))

	var ssRes, ssTot float64
	for i := range actual {
		d := actual[i] - predicted[i]
		ssRes += d * d
		t := actual[i] - meanActual
		ssTot += t * t
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}

	return 1 - ssRes/ssTot
}

// AUC computes the area under the ROC curve for scores against 0/1 labels
// via the rank-sum formulation. Degenerate label sets score 0.
func AUC(scores, labels []float64) float64 {
	if len(scores) == 0 || len(scores) != len(labels) {
		return 0
	}

	type pair struct {
		score float64
		label float64
	}
	pairs := make([]pair, len(scores))
	for i := range scores {
		pairs[i] = pair{scores[i], labels[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	// average ranks over tied scores
	ranks := make([]float64, len(pairs))
	for i := 0; i < len(pairs); {
		j := i
		for j < len(pairs) && pairs[j].score == pairs[i].score {
			j++
		}
		avg := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[k] = avg
		}
		i = j
	}

	var posRankSum, positives float64
	for i, p := range pairs {
		if p.label == 1 {
			posRankSum += ranks[i]
			positives++
		}
	}
	negatives := float64(len(pairs)) - positives
	if positives == 0 || negatives == 0 {
		return 0
	}

	return (posRankSum - positives*(positives+1)/2) / (positives * negatives)
}

// Accuracy computes the fraction of 0/1 labels matched by thresholding
// scores at 0.5
func Accuracy(scores, labels []float64) float64 {
	if len(scores) == 0 || len(scores) != len(labels) {
		return 0
	}

	correct := 0
	for i := range scores {
		pred := 0.0
		if scores[i] >= 0.5 {
			pred = 1
		}
		if pred == labels[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(scores))
}

// HoldoutSplit shuffles row indices and splits off a validation fraction
func HoldoutSplit(n int, validationFrac float64, seed int64) (train, validation []int) {
	idx := rand.New(rand.NewSource(seed)).Perm(n)
	cut := n - int(float64(n)*validationFrac)
	if cut < 1 {
		cut = 1
	}
	if cut >= n && n > 1 {
		cut = n - 1
	}
	return idx[:cut], idx[cut:]
}
