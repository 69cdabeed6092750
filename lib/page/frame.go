package page

import "github.com/nathants/inspector/lib/geom"

type BoxView struct {
	Visible bool      `json:"visible"`
	Rect    geom.Rect `json:"rect"`
}

type TooltipView struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	HTML    string  `json:"html,omitempty"`
}

type LineView struct {
	Panel string     `json:"panel"`
	From  geom.Point `json:"from"`
	To    geom.Point `json:"to"`
}

// PanelView positions one pinned panel. HTML is empty when the content is
// unchanged since the last frame, so the page leaves the panel DOM alone.
type PanelView struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	HTML        string  `json:"html,omitempty"`
	Highlighted bool    `json:"highlighted,omitempty"`
	Dragging    bool    `json:"dragging,omitempty"`
	Flash       bool    `json:"flash,omitempty"`
}

type ToolbarView struct {
	Picker bool `json:"picker"`
}

// Frame is the complete draw state of the inspector layer. Layer false
// removes the layer and every panel from the page.
type Frame struct {
	Layer           bool        `json:"layer"`
	Cursor          string      `json:"cursor,omitempty"`
	Color           string      `json:"color,omitempty"`
	Hover           BoxView     `json:"hover"`
	Tooltip         TooltipView `json:"tooltip"`
	TargetHighlight BoxView     `json:"target_highlight"`
	PanelHighlight  BoxView     `json:"panel_highlight"`
	TargetFlash     BoxView     `json:"target_flash"`
	Lines           []LineView  `json:"lines"`
	Panels          []PanelView `json:"panels"`
	Removed         []string    `json:"removed,omitempty"`
	Toolbar         ToolbarView `json:"toolbar"`
}
