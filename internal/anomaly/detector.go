package anomaly

import "math"

// Point is one observation of a metric series
type Point struct {
	Timestamp int64
	Value     float64
}

// Flag is the detector's verdict on one point
type Flag struct {
	MetricName  string
	Timestamp   int64
	Value       float64
	ZScore      float64
	IsAnomalous bool
}

// Config controls detection behavior
type Config struct {
	MinPoints int
	Sigma     float64
}

// Detector applies the 3-sigma rule to a rolling metric window. It is
// stateless; the caller supplies the window per check.
type Detector struct {
	cfg Config
}

// New creates a detector
func New(cfg Config) *Detector {
	if cfg.MinPoints <= 0 {
		cfg.MinPoints = 7
	}
	if cfg.Sigma <= 0 {
		cfg.Sigma = 3
	}
	return &Detector{cfg: cfg}
}

// Check evaluates the most recent point of the window against the mean and
// standard deviation of the preceding points. Windows thinner than the
// minimum produce no flags: absence of anomalies is the correct answer for
// thin history, not an error.
func (d *Detector) Check(metricName string, window []Point) []Flag {
	if len(window) < d.cfg.MinPoints {
		return nil
	}

	latest := window[len(window)-1]
	baseline := window[:len(window)-1]

	mean, stddev := meanStddev(baseline)

	deviation := math.Abs(latest.Value - mean)
	var zScore float64
	var anomalous bool
	if stddev == 0 {
		// constant baseline: any deviation at all is aberrant, and the
		// z-score is undefined, so it stays zero
		anomalous = deviation > 0
	} else {
		zScore = deviation / stddev
		anomalous = zScore > d.cfg.Sigma
	}

	return []Flag{{
		MetricName:  metricName,
		Timestamp:   latest.Timestamp,
		Value:       latest.Value,
		ZScore:      zScore,
		IsAnomalous: anomalous,
	}}
}

// CheckSeries slides the detector across a series, evaluating each point
// against the window of up to windowSize points preceding it. Used by the
// anomalies endpoint to report a whole window at once.
func (d *Detector) CheckSeries(metricName string, series []Point, windowSize int) []Flag {
	var flags []Flag
	for i := range series {
		start := 0
		if i+1 > windowSize {
			start = i + 1 - windowSize
		}
		flags = append(flags, d.Check(metricName, series[start:i+1])...)
	}
	return flags
}

func meanStddev(points []Point) (float64, float64) {
	n := float64(len(points))
	if n == 0 {
		return 0, 0
	}

	mean := 0.0
	for _, p := range points {
		mean += p.Value
	}
	mean /= n

	variance := 0.0
	for _, p := range points {
		d := p.Value - mean
		variance += d * d
	}
	variance /= n

	return mean, math.Sqrt(variance)
}
