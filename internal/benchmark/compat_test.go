package benchmark

import (
	"reflect"
	"testing"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

func nodesOf(models ...string) []model.MeshNode {
	nodes := make([]model.MeshNode, len(models))
	for i, m := range models {
		nodes[i] = model.MeshNode{ID: m, Name: m, Model: m}
	}
	return nodes
}

func TestNormalizeModel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"RT-AX88U":    "rtax88u",
		"rt ax88u":    "rtax88u",
		"RT_AX88U":    "rtax88u",
		"ZenWiFi XT8": "zenwifixt8",
		"GT-AXE11000": "gtaxe11000",
	}
	for in, want := range cases {
		if got := normalizeModel(in); got != want {
			t.Fatalf("normalizeModel(%q)=%q want %q", in, got, want)
		}
	}
}

func TestAnalyzeCompatibility_Homogeneous(t *testing.T) {
	t.Parallel()

	r := AnalyzeCompatibility(nodesOf("RT-AX88U", "RT-AX58U"))

	if r.LowestGeneration != model.GenerationWiFi6 || r.HighestGeneration != model.GenerationWiFi6 {
		t.Fatalf("generations=%v/%v", r.LowestGeneration, r.HighestGeneration)
	}
	if r.Score != 100 {
		t.Fatalf("score=%v", r.Score)
	}
	if len(r.Recommendations) != 0 {
		t.Fatalf("recommendations=%v", r.Recommendations)
	}
	want := []string{"beamforming", "mu-mimo", "ofdma", "target-wake-time", "wpa3"}
	if !reflect.DeepEqual(r.SharedCapabilities, want) {
		t.Fatalf("shared=%v", r.SharedCapabilities)
	}
}

func TestAnalyzeCompatibility_MixedGenerations(t *testing.T) {
	t.Parallel()

	r := AnalyzeCompatibility(nodesOf("RT-AC68U", "GT-AXE11000"))

	if r.LowestGeneration != model.GenerationWiFi5 {
		t.Fatalf("lowest=%v", r.LowestGeneration)
	}
	if r.HighestGeneration != model.GenerationWiFi6E {
		t.Fatalf("highest=%v", r.HighestGeneration)
	}

	want := []string{"beamforming", "mu-mimo"}
	if !reflect.DeepEqual(r.SharedCapabilities, want) {
		t.Fatalf("shared=%v", r.SharedCapabilities)
	}

	// Gap 2 generations (30), 4 capabilities not shared (20), WiFi 5 present (10).
	if r.Score != 40 {
		t.Fatalf("score=%v", r.Score)
	}

	topics := map[string]bool{}
	for _, rec := range r.Recommendations {
		topics[rec.Topic] = true
	}
	for _, want := range []string{"mixed-generations", "mixed-bands", "legacy-hardware"} {
		if !topics[want] {
			t.Fatalf("missing recommendation %q in %v", want, r.Recommendations)
		}
	}
}

func TestAnalyzeCompatibility_ScoreClampedAtZero(t *testing.T) {
	t.Parallel()

	r := AnalyzeCompatibility(nodesOf("RT-AC68U", "GT-BE98"))

	// Gap 3 (45), 6 not shared (30), WiFi 5 present (10): 15 left.
	if r.Score != 15 {
		t.Fatalf("score=%v", r.Score)
	}
	if r.Score < 0 || r.Score > 100 {
		t.Fatalf("score out of range: %v", r.Score)
	}
}

func TestAnalyzeCompatibility_UnknownModel(t *testing.T) {
	t.Parallel()

	r := AnalyzeCompatibility(nodesOf("RT-AX88U", "Mystery 9000"))

	if r.LowestGeneration != model.GenerationWiFi6 {
		t.Fatalf("lowest=%v", r.LowestGeneration)
	}
	found := false
	for _, rec := range r.Recommendations {
		if rec.Topic == "unknown-model" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing unknown-model recommendation: %v", r.Recommendations)
	}
}

func TestAnalyzeCompatibility_NoNodes(t *testing.T) {
	t.Parallel()

	r := AnalyzeCompatibility(nil)

	if r.Score != 100 {
		t.Fatalf("score=%v", r.Score)
	}
	if r.LowestGeneration != model.GenerationUnknown {
		t.Fatalf("lowest=%v", r.LowestGeneration)
	}
}
