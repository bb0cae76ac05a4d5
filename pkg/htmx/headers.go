package htmx

// Request headers sent by htmx.
const (
	HeaderHXRequest               = "HX-Request"
	HeaderHXBoosted               = "HX-Boosted"
	HeaderHXCurrentURL            = "HX-Current-URL"
	HeaderHXHistoryRestoreRequest = "HX-History-Restore-Request"
	HeaderHXPrompt                = "HX-Prompt"
	HeaderHXTarget                = "HX-Target"
	HeaderHXTriggerName           = "HX-Trigger-Name"
	HeaderHXTrigger               = "HX-Trigger"
)

// Response headers understood by htmx.
const (
	HeaderHXLocation = "HX-Location"
	HeaderHXRedirect = "HX-Redirect"
	HeaderHXRefresh  = "HX-Refresh"
	HeaderHXPushURL  = "HX-Push-Url"
	HeaderHXRetarget = "HX-Retarget"
	HeaderHXReswap   = "HX-Reswap"
)

// SwapStrategy is an hx-swap value sent back in HX-Reswap.
type SwapStrategy string

const (
	SwapInnerHTML SwapStrategy = "innerHTML"
	SwapOuterHTML SwapStrategy = "outerHTML"
	SwapDelete    SwapStrategy = "delete"
	SwapNone      SwapStrategy = "none"
)
