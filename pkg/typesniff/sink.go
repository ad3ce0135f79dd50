/*
Copyright 2024 The typesniff Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package typesniff

// Suggestion is a (probability, label) pair produced by a probe.
type Suggestion struct {
	Probability Probability
	Label       Label

	// rank and seq are the registration rank of the probe that produced
	// this suggestion and its position in the run's suggestion order;
	// they only affect Aggregator.Best's tie-breaking and are not part of
	// the suggestion's public identity.
	rank Rank
	seq  int
}

// Sink is the Suggestion Sink: the interface a probe's Context exposes for
// recording suggestions during a run.
type Sink interface {
	// Suggest records a suggestion. A probability of None (0) is silently
	// dropped, per spec.md §3's "suggestions with probability 0 are
	// discarded."
	Suggest(p Probability, l Label)
}

// Aggregator is the default Sink: it accumulates every suggestion produced
// during one recognition run and determines the best one by probability,
// then registration rank, then insertion order — spec.md §4.2's "best()".
//
// An Aggregator is not safe for concurrent use; each recognition run gets
// its own (see Registry.Recognize), which is what keeps a registry safe to
// share read-only across concurrently running recognitions (spec.md §5).
type Aggregator struct {
	results []Suggestion
	rank    Rank // current probe's rank; set by the dispatcher before each probe call
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// setRank is called by the dispatcher before invoking each probe so that
// subsequent Suggest calls are stamped with that probe's registration rank.
func (a *Aggregator) setRank(r Rank) {
	a.rank = r
}

// Suggest implements Sink.
func (a *Aggregator) Suggest(p Probability, l Label) {
	if p <= None {
		return
	}
	a.results = append(a.results, Suggestion{
		Probability: p.Clamp(),
		Label:       l,
		rank:        a.rank,
		seq:         len(a.results),
	})
}

// Best returns the highest-probability suggestion recorded so far, tie
// broken by registration rank then insertion order.
func (a *Aggregator) Best() (Suggestion, bool) {
	if len(a.results) == 0 {
		return Suggestion{}, false
	}
	best := a.results[0]
	for _, s := range a.results[1:] {
		if suggestionBetter(s, best) {
			best = s
		}
	}
	return best, true
}

// All returns every suggestion recorded so far, in the order probes
// produced them.
func (a *Aggregator) All() []Suggestion {
	out := make([]Suggestion, len(a.results))
	copy(out, a.results)
	return out
}

func suggestionBetter(a, b Suggestion) bool {
	if a.Probability != b.Probability {
		return a.Probability > b.Probability
	}
	if a.rank != b.rank {
		return a.rank > b.rank
	}
	return a.seq < b.seq
}
