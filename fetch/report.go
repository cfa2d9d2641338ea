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


package fetch

import (
	"fmt"
	"time"

	"github.com/poiesic/lexcorpus/core"
)

// Failure records a law that could not be fetched.
type Failure struct {
	Unit core.Unit
	URL  string
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %s (%v)", f.Unit, f.URL, f.Err)
}

// Report summarizes one fetch run.
type Report struct {
	Laws     int           // Laws configured
	Fetched  int           // Documents written to the store
	Existing int           // Documents left alone because they were present
	Bytes    int64         // Bytes written
	Failures []Failure     // Laws that failed, in law order
	Elapsed  time.Duration // Wall time
}

// OK reports whether every law was fetched or already present.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}
