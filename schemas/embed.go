// Package schemas holds the JSON Schemas of the records the fair guide
// exports.
package schemas

import "embed"

// FS contains every *.schema.json file of this directory.
//
//go:embed *.schema.json
var FS embed.FS
