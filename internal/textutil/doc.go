// Package textutil holds small string helpers shared by ingest, clip
// materialization and the CLI: filesystem-safe names and display titles.
package textutil
