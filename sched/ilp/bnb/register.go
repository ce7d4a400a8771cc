// register.go wires the branch-and-bound backend into the ilp registry.
// The init() runs when any package imports sched/ilp/bnb; the CLI does so
// with a blank import.
package bnb

import "github.com/dfgsched/dfgsched/sched/ilp"

// Name is the registry key of this backend.
const Name = "bnb"

func init() {
	ilp.Register(Name, func() ilp.Solver { return New() })
}
