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

// Package typesniff implements a media-type recognizer engine: given a
// bounded, possibly partial view of a byte stream, it runs a catalog of
// format probes and returns a ranked list of candidate media-type labels.
//
// The engine itself knows nothing about any particular format. Probes
// (see the sibling package typesniff/probes) are pure functions that
// inspect a Context — a bundle of a Peeker (bounded, bounds-checked access
// to the source) and a Sink (where suggestions accumulate) — and they are
// run by a Registry in descending rank order.
package typesniff
