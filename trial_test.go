package perfectmap

import (
	"testing"

	"github.com/tamirms/perfectmap/internal/displace"
)

func encodeAll(t *testing.T, keys []string) *trialInput {
	t.Helper()
	enc, _ := defaultEncoder[string]()
	in := &trialInput{n: bucketCount(len(keys))}
	for _, k := range keys {
		b := enc(nil, k)
		in.keys = append(in.keys, b)
		in.seedLen = max(in.seedLen, len(b))
	}
	return in
}

func TestRunTrialDeterministic(t *testing.T) {
	in := encodeAll(t, []string{"a", "b", "c", "d", "e"})
	seed := trialSeed{attempt: 3, s1: 11, s2: 22}

	a, err := runTrial(in, seed)
	if err != nil {
		t.Fatal(err)
	}
	b, err := runTrial(in, seed)
	if err != nil {
		t.Fatal(err)
	}
	if a.verdict != b.verdict || a.edges != b.edges {
		t.Fatalf("same seed, different outcome: %v/%d vs %v/%d", a.verdict, a.edges, b.verdict, b.edges)
	}
	for i := range a.pair.T1 {
		if a.pair.T1[i] != b.pair.T1[i] || a.pair.T2[i] != b.pair.T2[i] {
			t.Fatalf("same seed, different seed tables at %d", i)
		}
	}
}

func TestRunTrialVerdicts(t *testing.T) {
	in := &trialInput{
		keys:    [][]byte{{'x', 0xff}, {'x', 0xff}},
		seedLen: 2,
		n:       bucketCount(2),
	}
	for s := range uint64(20) {
		res, err := runTrial(in, trialSeed{attempt: int(s), s1: s, s2: s + 1})
		if err != nil {
			t.Fatal(err)
		}
		switch res.verdict {
		case verdictCyclic:
			// identical keys self-loop when f1 == f2
			if res.edges != 1 {
				t.Errorf("seed %d: cyclic after %d edges, want 1", s, res.edges)
			}
		case verdictDuplicate:
			if res.edges != 1 {
				t.Errorf("seed %d: duplicate after %d edges, want 1", s, res.edges)
			}
		default:
			t.Fatalf("seed %d: identical keys produced verdict %v", s, res.verdict)
		}
	}
}

func TestRunTrialSolvable(t *testing.T) {
	rng := newTestRNG(t)
	keys := generateStringKeys(rng, 300)
	in := encodeAll(t, keys)

	for attempt := range 200 {
		res, err := runTrial(in, trialSeed{attempt: attempt, s1: rng.Uint64(), s2: rng.Uint64()})
		if err != nil {
			t.Fatal(err)
		}
		if res.verdict != verdictOK {
			continue
		}
		if res.edges != len(keys) {
			t.Fatalf("ok trial inserted %d of %d keys", res.edges, len(keys))
		}
		g, err := displace.Assign(res.graph, uint32(len(keys)))
		if err != nil {
			t.Fatal(err)
		}
		if err := displace.Verify(res.pair, g, uint32(len(keys)), in.keys); err != nil {
			t.Fatal(err)
		}
		return
	}
	t.Fatal("no successful trial in 200 attempts")
}

func TestTrialVerdictString(t *testing.T) {
	for v, want := range map[trialVerdict]string{
		verdictOK:        "ok",
		verdictDuplicate: "duplicate-edge",
		verdictCyclic:    "cyclic",
		trialVerdict(9):  "unknown",
	} {
		if got := v.String(); got != want {
			t.Errorf("%d.String(): expected %q, got %q", v, want, got)
		}
	}
}
