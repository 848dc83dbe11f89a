package pack

// Structural guards over decoded JSON values. Persisted blobs and imported
// documents are untrusted; every read is gated by the guard for its expected
// shape, and callers substitute their own default when a guard fails.

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asNumber(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// GuardStringList accepts a list of strings.
func GuardStringList(v any) ([]string, bool) {
	list, ok := asList(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := asString(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func guardOverlay(v any) (Overlay, bool) {
	obj, ok := asObject(v)
	if !ok {
		return Overlay{}, false
	}
	id, ok := asString(obj["id"])
	if !ok {
		return Overlay{}, false
	}
	label, ok := asString(obj["label"])
	if !ok {
		return Overlay{}, false
	}
	// enabled must be an actual boolean, not merely truthy.
	enabled, ok := obj["enabled"].(bool)
	if !ok {
		return Overlay{}, false
	}
	return Overlay{ID: id, Label: label, Enabled: enabled}, true
}

// GuardClip accepts a single clip record. Tags and overlays are optional but
// must be well-formed when present.
func GuardClip(v any) (Clip, bool) {
	obj, ok := asObject(v)
	if !ok {
		return Clip{}, false
	}
	id, ok := asString(obj["id"])
	if !ok || id == "" {
		return Clip{}, false
	}
	title, ok := asString(obj["title"])
	if !ok {
		return Clip{}, false
	}
	duration, ok := asString(obj["duration"])
	if !ok {
		return Clip{}, false
	}

	clip := Clip{ID: id, Title: title, Duration: duration, Tags: []string{}, Overlays: []Overlay{}}

	if raw, present := obj["tags"]; present {
		tags, ok := GuardStringList(raw)
		if !ok {
			return Clip{}, false
		}
		clip.Tags = tags
	}

	if raw, present := obj["overlays"]; present {
		list, ok := asList(raw)
		if !ok {
			return Clip{}, false
		}
		for _, item := range list {
			overlay, ok := guardOverlay(item)
			if !ok {
				return Clip{}, false
			}
			clip.Overlays = append(clip.Overlays, overlay)
		}
	}

	return clip, true
}

// GuardClipList accepts a list of clips. A single malformed clip invalidates
// the whole list.
func GuardClipList(v any) ([]Clip, bool) {
	list, ok := asList(v)
	if !ok {
		return nil, false
	}
	clips := make([]Clip, 0, len(list))
	for _, item := range list {
		clip, ok := GuardClip(item)
		if !ok {
			return nil, false
		}
		clips = append(clips, clip)
	}
	return clips, true
}

// GuardLabelMap accepts a clip id -> label list mapping.
func GuardLabelMap(v any) (map[string][]string, bool) {
	obj, ok := asObject(v)
	if !ok {
		return nil, false
	}
	out := make(map[string][]string, len(obj))
	for id, raw := range obj {
		labels, ok := GuardStringList(raw)
		if !ok {
			return nil, false
		}
		out[id] = labels
	}
	return out, true
}

// GuardAnnotationMap accepts a clip id -> note string mapping.
func GuardAnnotationMap(v any) (map[string]string, bool) {
	obj, ok := asObject(v)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(obj))
	for id, raw := range obj {
		note, ok := asString(raw)
		if !ok {
			return nil, false
		}
		out[id] = note
	}
	return out, true
}

func guardPoint(v any) (Point, bool) {
	obj, ok := asObject(v)
	if !ok {
		return Point{}, false
	}
	x, ok := asNumber(obj["x"])
	if !ok {
		return Point{}, false
	}
	y, ok := asNumber(obj["y"])
	if !ok {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}

// GuardStroke accepts a single telestration stroke.
func GuardStroke(v any) (Stroke, bool) {
	obj, ok := asObject(v)
	if !ok {
		return Stroke{}, false
	}
	id, ok := asString(obj["id"])
	if !ok || id == "" {
		return Stroke{}, false
	}
	tool, ok := asString(obj["tool"])
	if !ok || (tool != ToolFreehand && tool != ToolArrow) {
		return Stroke{}, false
	}
	color, ok := asString(obj["color"])
	if !ok {
		return Stroke{}, false
	}
	width, ok := asNumber(obj["width"])
	if !ok {
		return Stroke{}, false
	}

	stroke := Stroke{ID: id, Tool: tool, Color: color, Width: width, Points: []Point{}}

	points, ok := asList(obj["points"])
	if !ok {
		return Stroke{}, false
	}
	for _, item := range points {
		point, ok := guardPoint(item)
		if !ok {
			return Stroke{}, false
		}
		stroke.Points = append(stroke.Points, point)
	}

	return stroke, true
}

// GuardStrokeList accepts an ordered stroke list.
func GuardStrokeList(v any) ([]Stroke, bool) {
	list, ok := asList(v)
	if !ok {
		return nil, false
	}
	strokes := make([]Stroke, 0, len(list))
	for _, item := range list {
		stroke, ok := GuardStroke(item)
		if !ok {
			return nil, false
		}
		strokes = append(strokes, stroke)
	}
	return strokes, true
}

// GuardTelestrationMap accepts a clip id -> stroke list mapping.
func GuardTelestrationMap(v any) (map[string][]Stroke, bool) {
	obj, ok := asObject(v)
	if !ok {
		return nil, false
	}
	out := make(map[string][]Stroke, len(obj))
	for id, raw := range obj {
		strokes, ok := GuardStrokeList(raw)
		if !ok {
			return nil, false
		}
		out[id] = strokes
	}
	return out, true
}
