package shell

// OverviewMode is the page shown while the overview is open.
type OverviewMode string

const (
	ModeWindowPicker OverviewMode = "window-picker"
	ModeAppGrid      OverviewMode = "app-grid"
)

// OverviewEvent is delivered to overview subscribers.
type OverviewEvent int

const (
	OverviewShowing OverviewEvent = iota
	OverviewShown
	OverviewHiding
	OverviewHidden
	OverviewModeChanged
)

func (e OverviewEvent) String() string {
	switch e {
	case OverviewShowing:
		return "showing"
	case OverviewShown:
		return "shown"
	case OverviewHiding:
		return "hiding"
	case OverviewHidden:
		return "hidden"
	case OverviewModeChanged:
		return "mode-changed"
	default:
		return "unknown"
	}
}

// Overview is the open/closed state of the workspace overview and its page.
// It opens on the window picker.
type Overview struct {
	visible bool
	mode    OverviewMode
	subs    map[int]func(OverviewEvent)
	next    int
}

func NewOverview() *Overview {
	return &Overview{mode: ModeWindowPicker, subs: make(map[int]func(OverviewEvent))}
}

func (o *Overview) Visible() bool {
	return o.visible
}

func (o *Overview) Mode() OverviewMode {
	return o.mode
}

// PickerShown reports whether the overview is open on the window picker.
func (o *Overview) PickerShown() bool {
	return o.visible && o.mode == ModeWindowPicker
}

func (o *Overview) Show() {
	if o.visible {
		return
	}
	o.mode = ModeWindowPicker
	o.emit(OverviewShowing)
	o.visible = true
	o.emit(OverviewShown)
}

func (o *Overview) Hide() {
	if !o.visible {
		return
	}
	o.emit(OverviewHiding)
	o.visible = false
	o.emit(OverviewHidden)
}

func (o *Overview) Toggle() {
	if o.visible {
		o.Hide()
	} else {
		o.Show()
	}
}

// SetMode switches the page of an open overview. It is ignored while hidden.
func (o *Overview) SetMode(m OverviewMode) {
	if !o.visible || o.mode == m {
		return
	}
	o.mode = m
	o.emit(OverviewModeChanged)
}

// Subscribe registers fn for every overview event.
func (o *Overview) Subscribe(fn func(OverviewEvent)) (cancel func()) {
	id := o.next
	o.next++
	o.subs[id] = fn
	return func() { delete(o.subs, id) }
}

func (o *Overview) emit(e OverviewEvent) {
	for id := 0; id < o.next; id++ {
		if fn, ok := o.subs[id]; ok {
			fn(e)
		}
	}
}
