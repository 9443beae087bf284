// Package task defines the unit of work of a workflow and the protocol for
// invoking it.
//
// A Task wraps a plain Go function. Calling it through Task.Call (never by
// invoking the function directly) pushes it onto the call stack, records the
// caller to callee edge in the run's graph, checks the edge against the
// static contracts of the run and finally executes or speculates the body.
//
// There are four kinds of task:
//   - Basic: any function; in a dry run its body is skipped and the node is
//     marked speculated.
//   - Static: declares the tasks it may call (deps and branches). The
//     declaration is enforced on real runs and walked on dry runs.
//   - Map: splits a collection argument into contiguous slices and runs one
//     Batch per slice.
//   - Batch: created by Map, never by users.
package task
