// Package graph records the dynamic call graph of a workflow run.
//
// # Why Graph Package Exists
//
// Tasks never declare their callees up front (except static tasks). The
// graph is therefore discovered while the workflow runs: every call adds an
// edge from the caller to the callee and every state change of a task is
// recorded here. A dry run fills the same structure with speculative nodes
// so that the possible shape of a workflow can be inspected without running
// any task body.
//
// # Storage
//
// Nodes live in an arena:
//   - **Arena:** a slice of nodes, each with a stable integer index
//   - **Index:** a map from nodeid.Address to the arena position
//   - **Edges:** each node keeps an ordered list of child indices
//
// Pruned nodes keep their arena slot and are merely marked absent, so
// indices handed out earlier never change meaning.
//
// # Statuses
//
// A node carries exactly one Status at a time:
//   - **StaticKnown:** declared or called but not yet started
//   - **BranchPossible:** a branch a static task may take
//   - **BranchNotTaken:** a batch that has been scheduled but not started
//   - **InProgress / Completed / Error:** real execution states
//   - **Speculated:** stand-in for a task whose body was skipped in a dry run
//
// # Outputs
//
// The graph renders to Graphviz DOT (see WriteDOT) and serializes to a YAML
// snapshot (see Snapshot and FromSnapshot). Observers registered with
// AddObserver receive every mutation as an Event.
//
// # Thread-Safety
//
// All Graph methods are safe for concurrent use. Observers are notified
// after the internal lock has been released.
package graph
