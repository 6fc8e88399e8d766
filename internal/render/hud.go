package render

// DrawHUD renders the status line and the hint line at the bottom of the
// screen.
func (r *Renderer) DrawHUD(status, hint string) {
	sw, sh := r.screen.Size()
	hudY := sh - hudRows
	if hudY < 0 {
		return
	}

	r.fill(0, hudY, sw, hudRows, styleBase)
	r.drawHLine(hudY)
	r.drawText(0, hudY+1, status, styleText)
	r.drawText(0, hudY+2, hint, styleAccent)
}

func (r *Renderer) drawHLine(y int) {
	w, _ := r.screen.Size()
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, '─', nil, styleDim)
	}
}
