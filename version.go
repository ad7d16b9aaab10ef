package chatdialog

import _ "embed"

// Version of the module, read from the VERSION file.
//
//go:embed VERSION
var Version string
