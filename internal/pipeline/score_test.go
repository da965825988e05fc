package pipeline

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		rec   Record
		query string
		want  float64
	}{
		{
			name:  "full coverage with thickness and phrase",
			rec:   Record{ProductName: "Celotex GA4050 PIR Insulation Board 50mm"},
			query: "50mm PIR insulation",
			want:  1.0,
		},
		{
			name:  "no overlap",
			rec:   Record{ProductName: "Oak skirting board"},
			query: "50mm PIR insulation",
			want:  0.0,
		},
		{
			name:  "empty query matches everything",
			rec:   Record{ProductName: "Anything"},
			query: "",
			want:  1.0,
		},
		{
			name:  "stop words only matches everything",
			rec:   Record{ProductName: "Anything"},
			query: "cheapest price board",
			want:  1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.rec, tt.query); got != tt.want {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreThicknessDiscriminates(t *testing.T) {
	query := "50mm PIR insulation board"
	exact := Score(Record{ProductName: "Kingspan PIR Insulation Board 50mm"}, query)
	wrong := Score(Record{ProductName: "Kingspan PIR Insulation Board 25mm"}, query)

	if exact <= wrong {
		t.Errorf("exact thickness %v must outscore wrong thickness %v", exact, wrong)
	}
}

func TestScoreThicknessSpellingFolded(t *testing.T) {
	// "50 mm" in the product name must count as an exact match for "50mm".
	spaced := Score(Record{ProductName: "Kingspan PIR Board 50 mm"}, "50mm PIR board")
	tight := Score(Record{ProductName: "Kingspan PIR Board 50mm"}, "50mm PIR board")

	if spaced != tight {
		t.Errorf("spaced thickness scored %v, tight %v; want equal", spaced, tight)
	}
}

func TestScoreClamped(t *testing.T) {
	got := Score(Record{ProductName: "PIR insulation 50mm PIR insulation"}, "PIR insulation 50mm")
	if got < 0 || got > 1 {
		t.Errorf("Score = %v, want within [0,1]", got)
	}
}

func TestMinRelevance(t *testing.T) {
	if minRelevance(StrategyTable) >= minRelevance(StrategyPlainText) {
		t.Error("high-confidence strategies must admit weaker matches than plain text")
	}
	if minRelevance(StrategyNumberedList) != minRelevance(StrategyBulletList) {
		t.Error("the two list strategies share a threshold")
	}
}
