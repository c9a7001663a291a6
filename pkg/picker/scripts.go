package picker

import _ "embed"

// OverlayID is the DOM id of the highlight box shown while a pick is armed.
const OverlayID = "rowpilot-picker-overlay"

// OverlaySelector matches the highlight box.
const OverlaySelector = `//*[@id="` + OverlayID + `"]`

var (
	//go:embed scripts/install.js
	installScript string

	//go:embed scripts/cleanup.js
	cleanupScript string

	//go:embed scripts/describe.js
	describeScript string

	//go:embed scripts/picked.js
	pickedPredicate string
)
