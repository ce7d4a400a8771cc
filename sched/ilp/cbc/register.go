package cbc

import "github.com/dfgsched/dfgsched/sched/ilp"

// Name is the registry key of this backend.
const Name = "cbc"

func init() {
	ilp.Register(Name, func() ilp.Solver { return New() })
}
