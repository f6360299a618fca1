package models

// Action kinds accepted in ScrapeRequest.Actions.
const (
	ActionClick      = "click"
	ActionType       = "type"
	ActionWait       = "wait"
	ActionScroll     = "scroll"
	ActionScreenshot = "screenshot"
)

// Wait conditions for ActionWait.
const (
	WaitSelector    = "selector"
	WaitTimeout     = "timeout"
	WaitNetworkIdle = "networkidle"
	WaitLoad        = "load"
)

// Action is a single page interaction performed before extraction.
// Actions run strictly in order; an action carries no result of its own,
// its effects are observed through subsequent page state.
type Action struct {
	// Type is the action kind: click, type, wait, scroll, or screenshot.
	Type string `json:"type" binding:"required,oneof=click type wait scroll screenshot"`

	// Selector is the CSS selector the action targets.
	// A click or type action without a selector is a no-op.
	Selector string `json:"selector,omitempty"`

	// Value is the text to type, or the selector to wait for when
	// Condition is "selector".
	Value string `json:"value,omitempty"`

	// WaitAfter is an extra delay in milliseconds after the action completes.
	WaitAfter int `json:"wait_after,omitempty" binding:"omitempty,min=0"`

	// Condition selects the wait sub-condition for wait actions:
	// selector, timeout, networkidle, or load.
	Condition string `json:"condition,omitempty" binding:"omitempty,oneof=selector timeout networkidle load"`

	// Timeout bounds the wait condition, in milliseconds.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=0"`

	// Amount is the scroll distance in pixels for scroll actions
	// without a selector.
	Amount int `json:"amount,omitempty"`
}
