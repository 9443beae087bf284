// internal/nodeid/doc.go

/*
Package nodeid provides the identity of a task invocation site within a
call graph.

A node is identified by the task name, the source location where the task
was declared, an optional batch index and a placeholder marker used for
speculated children. The canonical string form is

	name[index].children@site

where every part except the name is optional, e.g. `print_brup4@main.go:42`
or `sum_batches[2]@numbers.go:17`.
*/
package nodeid
