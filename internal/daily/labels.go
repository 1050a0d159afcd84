package daily

var eventLabels = map[string]string{
	"geyser":  "噴泉 (Geyser)",
	"grandma": "奶奶 (Grandma)",
	"turtle":  "海龜 (Turtle)",
}

// EventLabel returns the display name of a clock event, or name itself for
// events without one.
func EventLabel(name string) string {
	if label, ok := eventLabels[name]; ok {
		return label
	}
	return name
}
