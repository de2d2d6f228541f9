package histo

import (
	"encoding/json"
	"fmt"
)

// Data is a histogram of uniform bins starting from 0. Points are binned in constant time.
type Data struct {
	id       int
	total    int
	dividers []float64
	histo    []float64
	width    float64
}

func (D *Data) MarshalJSON() ([]byte, error) {
	j, err := json.Marshal(struct {
		ID       int       `json:"id"`
		Total    int       `json:"total"`
		Width    float64   `json:"width"`
		Dividers []float64 `json:"dividers"`
		Histo    []float64 `json:"histo"`
	}{
		ID:       D.id,
		Total:    D.total,
		Width:    D.width,
		Dividers: D.dividers,
		Histo:    D.histo,
	})
	if err != nil {
		return nil, err
	}
	return j, nil
}

// NewUniform returns an empty histogram of nbins bins, each of the given width,
// starting from 0. If an ID for the histogram is given, it will be set. If not, the ID will
// be set to -1.
func NewUniform(width float64, nbins int, ID ...int) *Data {
	if width <= 0 || nbins < 1 {
		panic(fmt.Sprintf("goSHG/histo.NewUniform: invalid width %g or number of bins %d", width, nbins))
	}
	d := &Data{
		id:       -1,
		dividers: make([]float64, nbins+1),
		histo:    make([]float64, nbins),
		width:    width,
	}
	for i := range d.dividers {
		d.dividers[i] = float64(i) * width
	}
	if len(ID) > 0 {
		d.id = ID[0]
	}
	return d
}

// Uniform returns the bin width.
func (D *Data) Uniform() float64 {
	return D.width
}

// Bins returns the number of bins in the histogram.
func (D *Data) Bins() int {
	return len(D.histo)
}

// AddIndex adds one count to the bin i. It panics if i is out of range.
func (M *Data) AddIndex(i int) {
	M.histo[i]++
	M.total++
}

// Total returns the number of data points added to the histogram.
func (D *Data) Total() int {
	return D.total
}

// View returns the bins of the histogram. Changes to the slice are reflected in the histogram.
func (D *Data) View() []float64 {
	return D.histo
}
