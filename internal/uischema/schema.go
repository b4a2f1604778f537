// Package uischema defines the typed UI contract emitted by the backend.
// The frontend renders the donation modal from this schema -- it never
// builds payloads or decides what to show on its own.
package uischema

// UISchema is the top-level schema the backend emits for one tier checkout.
type UISchema struct {
	Version    string      `json:"ui_schema_version"`
	TierID     string      `json:"tier_id"`
	State      string      `json:"state"`
	Components []Component `json:"components"`
	Actions    []Action    `json:"actions"`
}

// ComponentType identifies what frontend component to render.
type ComponentType string

const (
	ComponentTierSummary ComponentType = "tier_summary"
	ComponentQRImage     ComponentType = "qr_image"
	ComponentCopyCode    ComponentType = "copy_code"
	ComponentKeyFallback ComponentType = "key_fallback"
)

// Visibility controls component rendering.
type Visibility string

const (
	VisibilityVisible   Visibility = "visible"
	VisibilityHidden    Visibility = "hidden"
	VisibilityCollapsed Visibility = "collapsed"
)

// Component is a single renderable UI element.
type Component struct {
	Type       ComponentType  `json:"type"`
	Title      string         `json:"title"`
	Priority   int            `json:"priority"`
	Visibility Visibility     `json:"visibility"`
	Data       map[string]any `json:"data,omitempty"`
}

// ActionUIType classifies the user-facing action.
type ActionUIType string

const (
	ActionCopy ActionUIType = "copy"
)

// Action is a user-triggerable operation from the UI.
type Action struct {
	Type  ActionUIType `json:"type"`
	Label string       `json:"label"`
	// Value is what the action operates on, e.g. the clipboard text.
	Value       string `json:"value"`
	SuccessText string `json:"success_text,omitempty"`
}
