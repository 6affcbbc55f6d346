// Package graph provides the JSON document format for editable graphs.
//
// The core packages define no storage format; this package is the one the
// command-line host uses to load and save documents. Each node carries its
// parent list, so the format maps one-to-one onto [dag.Node]:
//
//	{
//	  "nodes": [
//	    {"id": "root"},
//	    {"id": "child", "label": "Child", "parents": ["root"],
//	     "data": {"owner": "ops"}, "position": {"x": 10, "y": 100}}
//	  ]
//	}
//
// Documents written by other tools may use the node-link form with a
// separate edge list instead; edges are merged into the parent lists on
// read:
//
//	{"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"from": "a", "to": "b"}]}
//
// # Reading
//
// [ReadFile], [Read] and [Unmarshal] decode a document and verify it with
// [dag.CheckInvariants] before returning nodes, so callers can hand the
// result straight to [dag.Store.Restore]. Hand-edited files with trailing
// commas, comments or missing quotes are repaired with jsonrepair when
// strict decoding fails; [Decode] reports whether that happened.
//
// # Writing
//
// [Marshal], [Write] and [WriteFile] keep the order of the node slice,
// since parent order and insertion order are meaningful to the editor.
//
// # Views
//
// A [View] captures the presentation state around a document: settled
// positions, collapsed nodes and the hidden set they imply.
package graph
