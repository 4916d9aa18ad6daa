package feed

import "tickerfeed/internal/domain"

// GestureKind names a user gesture on the feed surface.
type GestureKind int

const (
	GestureActivateItem GestureKind = iota
	GestureActivateBadge
	GestureRemoveTag
	GestureToggleText
)

func (k GestureKind) String() string {
	switch k {
	case GestureActivateItem:
		return "activate-item"
	case GestureActivateBadge:
		return "activate-badge"
	case GestureRemoveTag:
		return "remove-tag"
	case GestureToggleText:
		return "toggle-text"
	}
	return "unknown"
}

// Gesture is the structured payload of one gesture. Fields that do not
// apply to Kind are ignored.
type Gesture struct {
	Kind          GestureKind
	PostID        domain.PostID
	Ticker        string
	RangeModifier bool
}

// Dispatch routes g to its handler.
func (c *Controller) Dispatch(g Gesture) Cmd {
	h, ok := c.handlers[g.Kind]
	if !ok {
		c.logger.Warn("unhandled gesture", "kind", g.Kind.String())
		return nil
	}
	return h(g)
}
