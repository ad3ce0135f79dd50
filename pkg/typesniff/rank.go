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

// Rank controls the order probes run in (higher first) and breaks ties
// between suggestions of equal probability. It has no bearing on
// correctness — probes are pure — but it matters for latency against a
// partially-buffered source, since a probe that runs later may see more
// bytes, and for which suggestion Aggregator.Best reports when two probes
// agree on probability.
type Rank int

// Named rank levels. RankPrimary+N (any Rank > RankPrimary) is for probes
// that should run before the generic primary tier, e.g. a container probe
// that wants first refusal before its sub-format probes run.
const (
	RankNone      Rank = 0
	RankMarginal  Rank = 1
	RankSecondary Rank = 64
	RankPrimary   Rank = 128
)
