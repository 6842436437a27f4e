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

import   "testing"

/* -------------------------------------------------------------------------- */

func TestRandomMethSites1(t *testing.T) {

  config := RandomSitesConfig{
    Sites       : 200,
    MeanCoverage: 10.0,
    MeanSpacing : 50,
    DesertRate  : 0.05,
    DesertGap   : 10000,
    Seed        : 42}

  params := DefaultHMMParams(config.MeanCoverage)
  genome := NewGenome([]string{"chr1"}, []int{10000000})

  sites, labels := RandomMethSites(config, params, genome)

  if sites.Length() != 200 || len(labels) != 200 {
    t.Error("TestRandomMethSites1 failed!")
  }
  if !sites.IsSorted() {
    t.Error("TestRandomMethSites1 failed!")
  }
  if err := checkSegments(sites, SegmentSites(sites, config.DesertGap)); err != nil {
    t.Error("TestRandomMethSites1 failed!")
  }
  if sites.MeanCoverage() < 5.0 || sites.MeanCoverage() > 15.0 {
    t.Error("TestRandomMethSites1 failed!")
  }
  nfg := 0
  for i := 0; i < len(labels); i++ {
    if labels[i] {
      nfg++
    }
    if sites.Meth[i] < 0.0 || sites.Unmeth[i] < 0.0 {
      t.Error("TestRandomMethSites1 failed!")
    }
  }
  if nfg == 0 || nfg == len(labels) {
    t.Error("TestRandomMethSites1 failed!")
  }
  // the same seed yields the same sites
  result, _ := RandomMethSites(config, params, genome)

  for i := 0; i < sites.Length(); i++ {
    if result.Meth[i] != sites.Meth[i] || result.Ranges[i] != sites.Ranges[i] {
      t.Error("TestRandomMethSites1 failed!")
    }
  }
}

func TestRandomMethSites2(t *testing.T) {

  params := DefaultHMMParams(10.0)
  genome := NewGenome([]string{"chr1"}, []int{10000000})

  // with a desert after every site each site forms its own segment
  config := RandomSitesConfig{
    Sites       : 50,
    MeanCoverage: 10.0,
    MeanSpacing : 5,
    DesertRate  : 1.0,
    DesertGap   : 1000,
    Seed        : 1}

  sites, _ := RandomMethSites(config, params, genome)

  if len(SegmentSites(sites, config.DesertGap)) != sites.Length() {
    t.Error("TestRandomMethSites2 failed!")
  }
  // without deserts all sites form a single segment
  config.DesertRate = 0.0
  config.DesertGap  = 10000

  sites, _ = RandomMethSites(config, params, genome)

  if len(SegmentSites(sites, config.DesertGap)) != 1 {
    t.Error("TestRandomMethSites2 failed!")
  }
  // gaps are uniform on [1, 2*MeanSpacing-1]
  for i := 1; i < sites.Length(); i++ {
    gap := sites.Ranges[i].From - sites.Ranges[i-1].From
    if gap < 1 || gap > 2*config.MeanSpacing - 1 {
      t.Error("TestRandomMethSites2 failed!")
    }
  }
}

func TestRandomMethSites3(t *testing.T) {

  params := DefaultHMMParams(10.0)

  // a short genome is exhausted before all sites are placed
  config := RandomSitesConfig{
    Sites       : 1000,
    MeanCoverage: 10.0,
    MeanSpacing : 50,
    DesertRate  : 0.0,
    DesertGap   : 10000,
    Seed        : 3}

  genome := NewGenome([]string{"chr1", "chr2"}, []int{500, 500})

  sites, labels := RandomMethSites(config, params, genome)

  if sites.Length() >= 1000 || sites.Length() != len(labels) {
    t.Error("TestRandomMethSites3 failed!")
  }
  if !sites.IsSorted() {
    t.Error("TestRandomMethSites3 failed!")
  }
  for i := 0; i < sites.Length(); i++ {
    length, err := genome.SeqLength(sites.Seqnames[i])
    if err != nil {
      t.Error(err); return
    }
    if sites.Ranges[i].To > length {
      t.Error("TestRandomMethSites3 failed!")
    }
  }
}
