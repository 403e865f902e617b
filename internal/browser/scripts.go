package browser

import (
	_ "embed"
)

// Scripts evaluated in watched pages.

//go:embed scripts/bootstrap.js
var bootstrapScript string

//go:embed scripts/text_nodes.js
var textNodesScript string

//go:embed scripts/replace_text.js
var replaceTextScript string
