package histo

import (
	"encoding/json"
	"testing"
)

func TestUniform(Te *testing.T) {
	U := NewUniform(0.5, 4, 3)
	for _, i := range []int{0, 0, 1, 3, 3, 3} {
		U.AddIndex(i)
	}
	if U.Uniform() != 0.5 || U.Bins() != 4 {
		Te.Errorf("wrong histogram %v", U)
	}
	if U.View()[3] != 3 || U.View()[2] != 0 {
		Te.Errorf("wrong bins %v", U.View())
	}
	if U.Total() != 6 {
		Te.Errorf("expected 6 points, got %d", U.Total())
	}
}

func TestJSON(Te *testing.T) {
	U := NewUniform(0.25, 2, 1)
	U.AddIndex(1)
	D := NewUniform(1, 2)
	j, err := json.Marshal(U)
	if err != nil {
		Te.Fatal(err)
	}
	var got struct {
		ID       int       `json:"id"`
		Total    int       `json:"total"`
		Width    float64   `json:"width"`
		Dividers []float64 `json:"dividers"`
		Histo    []float64 `json:"histo"`
	}
	if err = json.Unmarshal(j, &got); err != nil {
		Te.Fatal(err)
	}
	if got.ID != 1 || got.Total != 1 || got.Width != 0.25 || len(got.Dividers) != 3 || got.Dividers[2] != 0.5 || got.Histo[1] != 1 {
		Te.Errorf("wrong JSON %s", j)
	}
	if j, _ = json.Marshal(D); json.Unmarshal(j, &got) != nil || got.ID != -1 {
		Te.Errorf("the default ID must be -1: %s", j)
	}
}

func TestBadUniform(Te *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			Te.Error("a zero width must panic")
		}
	}()
	NewUniform(0, 3)
}
