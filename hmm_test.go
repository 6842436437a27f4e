/* Copyright (C) 2024 Mohammad Deen
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package methpipe

/* -------------------------------------------------------------------------- */

//import   "fmt"
import   "math"
import   "testing"

/* -------------------------------------------------------------------------- */

func TestTwoStateHMM1(t *testing.T) {

  // two sites with low and one site with high methylation level
  sites := NewMethSites(
    []string {"chr1", "chr1", "chr1"},
    []int    {0, 100, 200},
    []int    {1, 101, 201},
    []float64{2, 1, 9},
    []float64{8, 9, 1})

  segments := SegmentSites(sites, 2000)

  model  := TwoStateHMM{MinProb: 1e-10, Tolerance: 1e-10, MaxIterations: 10, Threads: 1}
  params := DefaultHMMParams(sites.MeanCoverage())

  classes, scores, err := model.PosteriorDecoding(sites, segments, params)

  if err != nil {
    t.Error(err); return
  }
  if !classes[0] || !classes[1] || classes[2] {
    t.Error("TestTwoStateHMM1 failed!")
  }
  if scores[0] <= 0.5 || scores[1] <= 0.5 || scores[2] >= 0.5 {
    t.Error("TestTwoStateHMM1 failed!")
  }
  viterbi, err := model.ViterbiDecoding(sites, segments, params)

  if err != nil {
    t.Error(err); return
  }
  for i := 0; i < 3; i++ {
    if viterbi[i] != classes[i] {
      t.Error("TestTwoStateHMM1 failed!")
    }
  }
  fg, err := model.PosteriorScores(sites, segments, params, true)

  if err != nil {
    t.Error(err); return
  }
  bg, err := model.PosteriorScores(sites, segments, params, false)

  if err != nil {
    t.Error(err); return
  }
  for i := 0; i < 3; i++ {
    if fg[i] != scores[i] {
      t.Error("TestTwoStateHMM1 failed!")
    }
    if math.Abs(fg[i] + bg[i] - 1.0) > 1e-12 {
      t.Error("TestTwoStateHMM1 failed!")
    }
  }
  domains := BuildDomains(sites, scores, segments, classes)

  if domains.Length() != 1 {
    t.Error("TestTwoStateHMM1 failed!")
  }
  if domains.Seqnames[0] != "chr1" {
    t.Error("TestTwoStateHMM1 failed!")
  }
  if domains.Ranges[0] != NewRange(0, 101) {
    t.Error("TestTwoStateHMM1 failed!")
  }
  if domains.Names[0] != "HYPO0" {
    t.Error("TestTwoStateHMM1 failed!")
  }
  if math.Abs(domains.Scores[0] - (scores[0] + scores[1])) > 1e-12 {
    t.Error("TestTwoStateHMM1 failed!")
  }
}

func TestTwoStateHMM2(t *testing.T) {

  // 15 sites with methylation level 0.1 followed by 15 sites with
  // methylation level 0.9
  n := 30

  seqnames := make([]string,  n)
  from     := make([]int,     n)
  to       := make([]int,     n)
  meth     := make([]float64, n)
  unmeth   := make([]float64, n)
  for i := 0; i < n; i++ {
    seqnames[i] = "chr1"
    from    [i] = i*10
    to      [i] = i*10+1
    if i < 15 {
      meth[i], unmeth[i] = 2.0, 18.0
    } else {
      meth[i], unmeth[i] = 18.0, 2.0
    }
  }
  sites    := NewMethSites(seqnames, from, to, meth, unmeth)
  segments := SegmentSites(sites, 2000)

  model  := TwoStateHMM{MinProb: 1e-10, Tolerance: 1e-10, MaxIterations: 10, Threads: 1}
  params := DefaultHMMParams(sites.MeanCoverage())

  params, iterations, err := model.BaumWelchTraining(sites, segments, params)

  if err != nil {
    t.Error(err); return
  }
  if iterations < 1 || iterations > 10 {
    t.Error("TestTwoStateHMM2 failed!")
  }
  //fmt.Println(params)

  // the foreground state captures the low methylation level
  if params.Emit[StateFg].Mean() >= params.Emit[StateBg].Mean() {
    t.Error("TestTwoStateHMM2 failed!")
  }
  if math.Abs(params.Start[StateFg] + params.Start[StateBg] - 1.0) > 1e-12 {
    t.Error("TestTwoStateHMM2 failed!")
  }
  for j := 0; j < 2; j++ {
    if math.Abs(params.Trans[j][StateFg] + params.Trans[j][StateBg] - 1.0) > 1e-12 {
      t.Error("TestTwoStateHMM2 failed!")
    }
  }
  classes, _, err := model.PosteriorDecoding(sites, segments, params)

  if err != nil {
    t.Error(err); return
  }
  for i := 0; i < n; i++ {
    if classes[i] != (i < 15) {
      t.Error("TestTwoStateHMM2 failed!")
    }
  }
  viterbi, err := model.ViterbiDecoding(sites, segments, params)

  if err != nil {
    t.Error(err); return
  }
  for i := 0; i < n; i++ {
    if viterbi[i] != classes[i] {
      t.Error("TestTwoStateHMM2 failed!")
    }
  }
  fgToBg, err := model.TransitionPosteriors(sites, segments, params, FgToBg)

  if err != nil {
    t.Error(err); return
  }
  bgToFg, err := model.TransitionPosteriors(sites, segments, params, BgToFg)

  if err != nil {
    t.Error(err); return
  }
  // the first site of a segment has no incoming transition
  if fgToBg[0] != 0.0 || bgToFg[0] != 0.0 {
    t.Error("TestTwoStateHMM2 failed!")
  }
  kmax := 0
  for i := 1; i < n; i++ {
    if fgToBg[i] > fgToBg[kmax] {
      kmax = i
    }
  }
  if kmax != 15 {
    t.Error("TestTwoStateHMM2 failed!")
  }
  if bgToFg[15] >= fgToBg[15] {
    t.Error("TestTwoStateHMM2 failed!")
  }
}

func TestTwoStateHMM3(t *testing.T) {

  // two chromosomes with opposite methylation patterns
  n := 40

  seqnames := make([]string,  n)
  from     := make([]int,     n)
  to       := make([]int,     n)
  meth     := make([]float64, n)
  unmeth   := make([]float64, n)
  for i := 0; i < n; i++ {
    if i < 20 {
      seqnames[i] = "chr1"
    } else {
      seqnames[i] = "chr2"
    }
    from[i] = (i%20)*10
    to  [i] = (i%20)*10 + 1
    low := i < 10 || i >= 30
    if low {
      meth[i], unmeth[i] = 2.0, 18.0
    } else {
      meth[i], unmeth[i] = 18.0, 2.0
    }
  }
  sites    := NewMethSites(seqnames, from, to, meth, unmeth)
  segments := SegmentSites(sites, 2000)

  if len(segments) != 2 {
    t.Error("TestTwoStateHMM3 failed!")
  }
  params := DefaultHMMParams(sites.MeanCoverage())

  model1 := TwoStateHMM{MinProb: 1e-10, Tolerance: 1e-10, MaxIterations: 10, Threads: 1}
  model4 := TwoStateHMM{MinProb: 1e-10, Tolerance: 1e-10, MaxIterations: 10, Threads: 4}

  classes1, scores1, err := model1.PosteriorDecoding(sites, segments, params)

  if err != nil {
    t.Error(err); return
  }
  classes4, scores4, err := model4.PosteriorDecoding(sites, segments, params)

  if err != nil {
    t.Error(err); return
  }
  for i := 0; i < n; i++ {
    if classes1[i] != classes4[i] || scores1[i] != scores4[i] {
      t.Error("TestTwoStateHMM3 failed!")
    }
    if classes1[i] != (i < 10 || i >= 30) {
      t.Error("TestTwoStateHMM3 failed!")
    }
  }
}

func TestTwoStateHMM4(t *testing.T) {

  model  := TwoStateHMM{MinProb: 1e-10, Tolerance: 1e-8, MaxIterations: 2, Threads: 1}
  params := DefaultHMMParams(10.0)

  // a single site with symmetric counts has posterior one half
  single := NewMethSites(
    []string{"chr1"}, []int{0}, []int{1}, []float64{5}, []float64{5})

  segments := SegmentSites(single, 2000)

  classes, scores, err := model.PosteriorDecoding(single, segments, params)

  if err != nil {
    t.Error(err); return
  }
  if math.Abs(scores[0] - 0.5) > 1e-12 {
    t.Error("TestTwoStateHMM4 failed!")
  }
  if classes[0] {
    t.Error("TestTwoStateHMM4 failed!")
  }
  if _, err := model.ViterbiDecoding(single, segments, params); err != nil {
    t.Error(err); return
  }
  if _, iterations, err := model.BaumWelchTraining(single, segments, params); err != nil {
    t.Error(err); return
  } else {
    if iterations < 1 || iterations > 2 {
      t.Error("TestTwoStateHMM4 failed!")
    }
  }
  // empty input
  empty := NewEmptyMethSites(0)

  if _, iterations, err := model.BaumWelchTraining(empty, nil, params); err != nil {
    t.Error(err); return
  } else {
    if iterations != 0 {
      t.Error("TestTwoStateHMM4 failed!")
    }
  }
  if classes, _, err := model.PosteriorDecoding(empty, nil, params); err != nil {
    t.Error(err); return
  } else {
    if len(classes) != 0 {
      t.Error("TestTwoStateHMM4 failed!")
    }
  }
  // segments that do not cover all sites are rejected
  if _, _, err := model.PosteriorDecoding(single, []Segment{{0, 2}}, params); err == nil {
    t.Error("TestTwoStateHMM4 failed!")
  }
  if _, err := model.TransitionPosteriors(single, segments, params, TransitionKind(7)); err == nil {
    t.Error("TestTwoStateHMM4 failed!")
  }
}
