package imageurl

import "math"

// round は0.5を正の無限大方向に丸める。CDN側の計算と結果を揃えるため math.Round は使わない。
func round(f float64) int {
	return int(math.Floor(f + 0.5))
}

// bounds はピクセル単位の矩形（浮動小数点）。
type bounds struct {
	left, top, right, bottom float64
}

// cropRect はクロップ割合を元画像のピクセル範囲に変換する。
func cropRect(a asset, c image) Rect {
	w, h := float64(a.width), float64(a.height)
	left := round(c.crop.Left * w)
	top := round(c.crop.Top * h)
	return Rect{
		Left:   left,
		Top:    top,
		Width:  round(w - c.crop.Right*w - float64(left)),
		Height: round(h - c.crop.Bottom*h - float64(top)),
	}
}

// hotspotBounds は焦点を元画像のピクセル範囲に変換する。
func hotspotBounds(a asset, c image) bounds {
	w, h := float64(a.width), float64(a.height)
	rx := c.hotspot.Width * w / 2
	ry := c.hotspot.Height * h / 2
	cx := c.hotspot.X * w
	cy := c.hotspot.Y * h
	return bounds{left: cx - rx, top: cy - ry, right: cx + rx, bottom: cy + ry}
}

// fit は出力サイズに合わせた切り抜き範囲を求める。
// 幅と高さの両方が指定されていない場合はクロップ範囲をそのまま返す。
// 両方が指定されている場合は、クロップ範囲内で焦点の中心に寄せた同じ縦横比の範囲を返す。
func fit(a asset, img image, width, height int) Rect {
	crop := cropRect(a, img)
	if width <= 0 || height <= 0 {
		return crop
	}

	hs := hotspotBounds(a, img)
	desired := float64(width) / float64(height)
	cropAspect := float64(crop.Width) / float64(crop.Height)

	if cropAspect > desired {
		// クロップ範囲が横長: 高さを合わせて左右を焦点で決める
		h := crop.Height
		w := round(float64(h) * desired)
		top := max(0, crop.Top)
		centerX := round((hs.right-hs.left)/2 + hs.left)
		left := max(0, round(float64(centerX)-float64(w)/2))
		if left < crop.Left {
			left = crop.Left
		} else if left+w > crop.Left+crop.Width {
			left = crop.Left + crop.Width - w
		}
		return Rect{Left: left, Top: top, Width: w, Height: h}
	}

	// クロップ範囲が縦長: 幅を合わせて上下を焦点で決める
	w := crop.Width
	h := round(float64(w) / desired)
	left := max(0, crop.Left)
	centerY := round((hs.bottom-hs.top)/2 + hs.top)
	top := max(0, round(float64(centerY)-float64(h)/2))
	if top < crop.Top {
		top = crop.Top
	} else if top+h > crop.Top+crop.Height {
		top = crop.Top + crop.Height - h
	}
	return Rect{Left: left, Top: top, Width: w, Height: h}
}
