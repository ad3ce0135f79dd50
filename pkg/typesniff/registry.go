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

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrDuplicateName is returned (wrapped) when Register is called twice
// with the same probe name.
var ErrDuplicateName = errors.New("typesniff: duplicate probe name")

// Registration is the tuple a probe is registered with: its logical name,
// its tie-breaking/ordering rank, the probe function itself, the filename
// extensions it hints at, the label it suggests when matched purely by
// extension, and opaque user data passed back to the probe on every call.
type Registration struct {
	Name       string
	Rank       Rank
	Probe      ProbeFunc
	Extensions []string
	Default    Label
	UserData   any
}

// Registry holds a catalog of registrations and dispatches recognition
// runs against it. A Registry is built once at startup (probes register,
// there is no hot reload) and is safe for concurrent read-only use
// afterwards — spec.md §5.
type Registry struct {
	byName  map[string]*Registration
	ordered []*Registration // in registration order
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Registration)}
}

// Register adds reg to the registry. It fails with ErrDuplicateName if
// reg.Name is already registered.
func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" {
		return fmt.Errorf("typesniff: register: empty probe name")
	}
	if reg.Probe == nil {
		return fmt.Errorf("typesniff: register %q: nil probe function", reg.Name)
	}
	if _, exists := r.byName[reg.Name]; exists {
		return fmt.Errorf("typesniff: register %q: %w", reg.Name, ErrDuplicateName)
	}
	cp := reg
	r.byName[reg.Name] = &cp
	r.ordered = append(r.ordered, &cp)
	return nil
}

// sortedRegistrations returns registrations ordered by descending rank,
// ties broken by registration order. sort.SliceStable over the
// registration-order slice gives exactly that: probes of equal rank stay
// in the order they were registered in.
func (r *Registry) sortedRegistrations() []*Registration {
	out := make([]*Registration, len(r.ordered))
	copy(out, r.ordered)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank > out[j].Rank
	})
	return out
}

// Options controls a single Recognize call.
type Options struct {
	// StopAtMaximum, if true, stops running further probes once the
	// aggregator's best suggestion so far reaches Maximum. Per spec.md
	// §4.5, probes may short-circuit by returning Maximum, but the
	// dispatcher runs every remaining probe unless this host policy is
	// requested.
	StopAtMaximum bool
}

// Recognize runs every registered probe against src in descending-rank
// order and returns every suggestion produced, in the order probes
// produced them. It is deterministic: identical src and registry produce
// an identical suggestion sequence.
func (r *Registry) Recognize(src Peeker) []Suggestion {
	return r.RecognizeWithOptions(src, Options{})
}

// RecognizeWithOptions is Recognize with host policy knobs.
func (r *Registry) RecognizeWithOptions(src Peeker, opts Options) []Suggestion {
	agg := NewAggregator()
	ctx := newContext(src, agg)
	for _, reg := range r.sortedRegistrations() {
		agg.setRank(reg.Rank)
		reg.Probe(ctx, reg.UserData)
		if opts.StopAtMaximum {
			if best, ok := agg.Best(); ok && best.Probability == Maximum {
				break
			}
		}
	}
	return agg.All()
}

// RecognizeByExtension returns suggestions from every probe whose
// Extensions list contains filename's extension (case-insensitive),
// each at Likely probability, using that probe's Default label. It never
// touches the source's contents.
func (r *Registry) RecognizeByExtension(filename string) []Suggestion {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return nil
	}
	var out []Suggestion
	seq := 0
	for _, reg := range r.sortedRegistrations() {
		for _, e := range reg.Extensions {
			if strings.ToLower(e) == ext {
				out = append(out, Suggestion{
					Probability: Likely,
					Label:       reg.Default,
					rank:        reg.Rank,
					seq:         seq,
				})
				seq++
				break
			}
		}
	}
	return out
}

// RecognizeAll runs Recognize concurrently over every source in srcs,
// returning one suggestion slice per source in the same order. This is an
// addition beyond spec.md's single-source recognize operation, justified
// by spec.md §5's explicit allowance for a host to run multiple
// recognitions in parallel on distinct sources against the same
// (immutable) registry. If any goroutine panics, errgroup's recover
// semantics do not apply — sources are assumed well-formed Peeker
// implementations; a failing probe never panics by contract (§7).
func (r *Registry) RecognizeAll(ctx context.Context, srcs []Peeker) ([][]Suggestion, error) {
	results := make([][]Suggestion, len(srcs))
	g, _ := errgroup.WithContext(ctx)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			results[i] = r.Recognize(src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
