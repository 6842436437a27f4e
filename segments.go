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

import "fmt"

/* -------------------------------------------------------------------------- */

// Half-open index interval [From, To) referring to a block of consecutive
// sites. Segments partition the sites such that no block extends over a
// chromosome boundary or a CpG desert.
type Segment struct {
  From, To int
}

func (segment Segment) Length() int {
  return segment.To - segment.From
}

func (segment Segment) String() string {
  return fmt.Sprintf("[%d %d)", segment.From, segment.To)
}

/* -------------------------------------------------------------------------- */

// Partition sites into segments of consecutive sites that are not separated
// by more than desertSize base pairs. Distances are measured between start
// positions of adjacent sites. A change of chromosome always starts a new
// segment. Sites must be sorted.
func SegmentSites(sites MethSites, desertSize int) []Segment {
  n := sites.Length()
  if n == 0 {
    return nil
  }
  segments := []Segment{}

  from := 0
  for i := 1; i < n; i++ {
    if sites.Seqnames[i] != sites.Seqnames[i-1] ||
      sites.Ranges[i].From - sites.Ranges[i-1].From > desertSize {
      segments = append(segments, Segment{from, i})
      from = i
    }
  }
  segments = append(segments, Segment{from, n})

  return segments
}

/* -------------------------------------------------------------------------- */

// Check that segments are a contiguous partition of the sites.
func checkSegments(sites MethSites, segments []Segment) error {
  from := 0
  for _, segment := range segments {
    if segment.From != from || segment.To < segment.From {
      return fmt.Errorf("invalid segment %v: expected segment starting at %d", segment, from)
    }
    from = segment.To
  }
  if from != sites.Length() {
    return fmt.Errorf("segments cover %d sites, expected %d", from, sites.Length())
  }
  return nil
}
