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

import   "math/rand"
import   "testing"

/* -------------------------------------------------------------------------- */

func TestShuffleSites1(t *testing.T) {

  n := 10

  seqnames := make([]string,  n)
  from     := make([]int,     n)
  to       := make([]int,     n)
  meth     := make([]float64, n)
  unmeth   := make([]float64, n)
  for i := 0; i < n; i++ {
    seqnames[i] = "chr1"
    from    [i] = i*10
    to      [i] = i*10 + 1
    meth    [i] = float64(i)
    unmeth  [i] = float64(100 + i)
  }
  sites    := NewMethSites(seqnames, from, to, meth, unmeth)
  segments := []Segment{{0, 5}, {5, 10}}

  rng := rand.New(rand.NewSource(42))

  shuffled := ShuffleSites(sites, segments, rng)

  // the input is left unchanged
  for i := 0; i < n; i++ {
    if sites.Meth[i] != float64(i) || sites.Unmeth[i] != float64(100+i) {
      t.Error("TestShuffleSites1 failed!")
    }
  }
  // positions are left in place
  for i := 0; i < n; i++ {
    if shuffled.Seqnames[i] != sites.Seqnames[i] || shuffled.Ranges[i] != sites.Ranges[i] {
      t.Error("TestShuffleSites1 failed!")
    }
  }
  // count pairs stay together and do not cross segment boundaries
  for _, segment := range segments {
    sum := 0.0
    for i := segment.From; i < segment.To; i++ {
      if shuffled.Unmeth[i] != shuffled.Meth[i] + 100.0 {
        t.Error("TestShuffleSites1 failed!")
      }
      if int(shuffled.Meth[i]) < segment.From || int(shuffled.Meth[i]) >= segment.To {
        t.Error("TestShuffleSites1 failed!")
      }
      sum += shuffled.Meth[i]
    }
    expected := 0.0
    for i := segment.From; i < segment.To; i++ {
      expected += float64(i)
    }
    if sum != expected {
      t.Error("TestShuffleSites1 failed!")
    }
  }
  // the same seed yields the same permutation
  result := ShuffleSites(sites, segments, rand.New(rand.NewSource(42)))

  for i := 0; i < n; i++ {
    if result.Meth[i] != shuffled.Meth[i] {
      t.Error("TestShuffleSites1 failed!")
    }
  }
}

func TestShuffleSites2(t *testing.T) {

  sites := NewMethSites(
    []string {"chr1", "chr1"},
    []int    {0, 100},
    []int    {1, 101},
    []float64{2, 8},
    []float64{8, 2})

  // single site segments leave the counts in place
  rng := rand.New(rand.NewSource(1))

  shuffled := ShuffleSites(sites, []Segment{{0, 1}, {1, 2}}, rng)

  if shuffled.Meth[0] != 2.0 || shuffled.Meth[1] != 8.0 {
    t.Error("TestShuffleSites2 failed!")
  }
}
