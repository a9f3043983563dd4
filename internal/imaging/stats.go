package imaging

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ironsheep/pixfun-mcp/internal/raster"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// StatsResult summarises a band.  Min, Max, Mean and StdDev cover the
// finite pixels only and are NaN when there are none.  Complex bands are
// summarised by modulus.
type StatsResult struct {
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	DataType sample.DataType `json:"data_type"`
	Modulus  bool            `json:"modulus,omitempty"`
	Count    int             `json:"count"`
	Valid    int             `json:"valid"`
	NaN      int             `json:"nan"`
	Inf      int             `json:"inf"`
	Min      Value           `json:"min"`
	Max      Value           `json:"max"`
	Mean     Value           `json:"mean"`
	StdDev   Value           `json:"stddev"`
}

// Statistics computes the summary of buf, or of region when it is non-nil.
// StdDev is the population standard deviation.
func Statistics(buf *raster.Buffer, region *Region) (*StatsResult, error) {
	if region != nil {
		if err := region.Validate(buf.Width(), buf.Height()); err != nil {
			return nil, err
		}
		win, err := buf.Window(raster.WindowFromRect(region.Rect()))
		if err != nil {
			return nil, err
		}
		buf = win
	}

	mag, _ := magnitudes(buf)
	res := &StatsResult{
		Width:    buf.Width(),
		Height:   buf.Height(),
		DataType: buf.Type(),
		Modulus:  buf.Type().IsComplex(),
		Count:    len(mag),
	}

	// Welford's running mean and variance.
	var mean, m2 float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range mag {
		switch {
		case math.IsNaN(v):
			res.NaN++
			continue
		case math.IsInf(v, 0):
			res.Inf++
			continue
		}
		res.Valid++
		d := v - mean
		mean += d / float64(res.Valid)
		m2 += d * (v - mean)
		lo, hi = min(lo, v), max(hi, v)
	}

	if res.Valid == 0 {
		nan := Value(math.NaN())
		res.Min, res.Max, res.Mean, res.StdDev = nan, nan, nan, nan
		return res, nil
	}
	res.Min, res.Max = Value(lo), Value(hi)
	res.Mean = Value(mean)
	res.StdDev = Value(math.Sqrt(m2 / float64(res.Valid)))
	return res, nil
}

// CompareResult describes how far two bands of the same size differ.
type CompareResult struct {
	TotalPixels     int     `json:"total_pixels"`
	PixelsDifferent int     `json:"pixels_different"`
	Identical       bool    `json:"identical"`
	SimilarityScore float64 `json:"similarity_score"`
	MaxAbsDiff      Value   `json:"max_abs_diff"`
	MeanAbsDiff     Value   `json:"mean_abs_diff"`
}

// Compare measures the pixelwise difference between a and b.  A pixel
// differs when the modulus of the difference exceeds tolerance.  Pixels
// that are NaN in both bands match; NaN in only one always differs.
func Compare(a, b *raster.Buffer, tolerance float64) (*CompareResult, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("band sizes differ: %dx%d vs %dx%d",
			a.Width(), a.Height(), b.Width(), b.Height())
	}
	if tolerance < 0 || math.IsNaN(tolerance) {
		return nil, fmt.Errorf("tolerance must be non-negative, got %g", tolerance)
	}

	av, bv := a.Complex128s(), b.Complex128s()
	total := len(av)
	different := 0
	var maxDiff, sumDiff float64
	compared := 0

	for i := range av {
		na, nb := cmplx.IsNaN(av[i]), cmplx.IsNaN(bv[i])
		if na || nb {
			if na != nb {
				different++
			}
			continue
		}
		var diff float64
		if av[i] != bv[i] {
			diff = cmplx.Abs(av[i] - bv[i])
		}
		if math.IsNaN(diff) {
			// Opposite infinities.
			diff = math.Inf(1)
		}
		compared++
		sumDiff += diff
		maxDiff = max(maxDiff, diff)
		if diff > tolerance {
			different++
		}
	}

	res := &CompareResult{
		TotalPixels:     total,
		PixelsDifferent: different,
		Identical:       different == 0,
		SimilarityScore: 1,
		MaxAbsDiff:      Value(maxDiff),
	}
	if total > 0 {
		res.SimilarityScore = math.Round((1-float64(different)/float64(total))*1000) / 1000
	}
	if compared > 0 {
		res.MeanAbsDiff = Value(sumDiff / float64(compared))
	}
	return res, nil
}
