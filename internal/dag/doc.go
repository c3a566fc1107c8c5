// Package dag keeps the link topology of a pipeline as a directed graph of
// node ids. The pipeline builder uses it to reject cyclic pipelines and to
// order nodes so that every producer is serialized before its consumers.
package dag
