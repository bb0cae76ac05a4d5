package views

import "embed"

// Assets holds the stylesheet and client script served under /assets/.
//
//go:embed assets
var Assets embed.FS
