// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/lexcorpus/core"
)

const (
	StatusCompleted             = "completed"
	StatusCompletedWithWarnings = "completed with warnings"
)

// Skip records a unit that produced no articles.
type Skip struct {
	Unit core.Unit
	Path string
	Err  error
}

// Reason classifies the skip for operators.
func (s Skip) Reason() string {
	switch {
	case errors.Is(s.Err, core.ErrSourceNotFound):
		return "source not found"
	case errors.Is(s.Err, core.ErrMalformedDocument):
		return "malformed document"
	default:
		return "source unavailable"
	}
}

func (s Skip) String() string {
	return fmt.Sprintf("%s: %s (%v)", s.Unit, s.Reason(), s.Err)
}

// Report summarizes one ingestion run.
type Report struct {
	Units      int               // Units visited
	Parsed     int               // Units parsed successfully
	Articles   int               // Articles written to the store
	Suspicious int               // Articles with an empty eId
	Skips      []Skip            // Units skipped, in unit order
	PerUnit    map[core.Unit]int // Articles per parsed unit
	Elapsed    time.Duration     // Wall time of the run
}

// Status is "completed" when every unit parsed and "completed with warnings" otherwise.
func (r *Report) Status() string {
	if len(r.Skips) > 0 {
		return StatusCompletedWithWarnings
	}
	return StatusCompleted
}
