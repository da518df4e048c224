package viewer

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"

	"github.com/tOgg1/lightbox/internal/carousel"
)

// The strip is the physical scroll surface: item panes laid out side by side
// in a virtual row, of which a window the size of the container is shown.
// The offset animator owns the window position; the strip is a pure function
// from (panes, offset) to visible cells, so drag frames, commit animations
// and arrow jumps all render through the same path.

// composeStrip renders the window [offset, offset+width) over the virtually
// concatenated panes. Every pane must be width cells wide; use padPane.
// Offsets outside the valid range are clamped for display only.
func composeStrip(panes []string, width, height, offset int) string {
	if width <= 0 || height <= 0 || len(panes) == 0 {
		return ""
	}

	max := width * (len(panes) - 1)
	if offset < 0 {
		offset = 0
	}
	if offset > max {
		offset = max
	}

	first := offset / width
	local := offset % width

	left := strings.Split(panes[first], "\n")
	var right []string
	if local > 0 && first+1 < len(panes) {
		right = strings.Split(panes[first+1], "\n")
	}

	lines := make([]string, height)
	for row := 0; row < height; row++ {
		joined := lineAt(left, row)
		if right != nil {
			joined += lineAt(right, row)
		}
		lines[row] = cropLine(joined, local, width)
	}
	return strings.Join(lines, "\n")
}

// padPane normalizes a rendered pane to exactly width x height cells so the
// strip math can treat panes as fixed-size tiles.
func padPane(pane string, width, height int) string {
	lines := strings.Split(pane, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	out := make([]string, height)
	for row := 0; row < height; row++ {
		line := lineAt(lines, row)
		if w := ansi.PrintableRuneWidth(line); w < width {
			line += strings.Repeat(" ", width-w)
		} else if w > width {
			line = cropLine(line, 0, width)
		}
		out[row] = line
	}
	return strings.Join(out, "\n")
}

// viewabilityEntries reports which panes the window currently shows and the
// fraction of the window each occupies, feeding the controller's
// visibility-driven page commits.
func viewabilityEntries(offset, width float64, count int) []carousel.Viewable {
	if width <= 0 || count == 0 {
		return nil
	}
	max := width * float64(count-1)
	if offset < 0 {
		offset = 0
	}
	if offset > max {
		offset = max
	}

	first := int(offset / width)
	if first > count-1 {
		first = count - 1
	}
	frac := (offset - width*float64(first)) / width

	entries := []carousel.Viewable{{Index: first, Ratio: 1 - frac}}
	if frac > 0 && first+1 < count {
		entries = append(entries, carousel.Viewable{Index: first + 1, Ratio: frac})
	}
	return entries
}

func lineAt(lines []string, row int) string {
	if row < 0 || row >= len(lines) {
		return ""
	}
	return lines[row]
}

// cropLine cuts the display-cell window [start, start+width) out of an
// ANSI-styled line. Styling that opened before the window is re-applied at
// the window edge, and any open styling is reset at the end so sliding a
// styled pane never bleeds color into its neighbor. Wide runes cut by either
// edge degrade to spaces.
func cropLine(line string, start, width int) string {
	if width <= 0 {
		return ""
	}

	var out strings.Builder
	var pending strings.Builder

	pos := 0
	emitted := 0
	opened := false
	styled := false

	open := func() {
		if opened {
			return
		}
		opened = true
		if pending.Len() > 0 {
			out.WriteString(pending.String())
			styled = true
		}
	}

	i := 0
	for i < len(line) && emitted < width {
		if line[i] == '\x1b' {
			j := ansiSeqEnd(line, i)
			seq := line[i:j]
			if opened {
				out.WriteString(seq)
				if strings.HasSuffix(seq, "m") {
					styled = true
				}
			} else if strings.HasSuffix(seq, "m") {
				// Carry SGR state toward the window edge; a reset
				// clears everything accumulated so far.
				if seq == "\x1b[0m" || seq == "\x1b[m" {
					pending.Reset()
				} else {
					pending.WriteString(seq)
				}
			}
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		i += size
		w := runewidth.RuneWidth(r)
		if w == 0 {
			if opened {
				out.WriteRune(r)
			}
			continue
		}

		switch {
		case pos+w <= start:
			// Entirely left of the window.
		case pos < start:
			// Wide rune straddling the left edge.
			open()
			visible := pos + w - start
			for k := 0; k < visible && emitted < width; k++ {
				out.WriteByte(' ')
				emitted++
			}
		case emitted+w > width:
			// Wide rune straddling the right edge.
			open()
			for emitted < width {
				out.WriteByte(' ')
				emitted++
			}
		default:
			open()
			out.WriteRune(r)
			emitted += w
		}
		pos += w
	}

	open()
	if emitted < width {
		if styled {
			out.WriteString("\x1b[0m")
			styled = false
		}
		out.WriteString(strings.Repeat(" ", width-emitted))
	}
	if styled {
		out.WriteString("\x1b[0m")
	}
	return out.String()
}

// ansiSeqEnd returns the index just past the escape sequence starting at i.
func ansiSeqEnd(s string, i int) int {
	j := i + 1
	if j >= len(s) {
		return j
	}
	if s[j] != '[' {
		return j + 1
	}
	j++
	for j < len(s) {
		c := s[j]
		j++
		if c >= '@' && c <= '~' {
			break
		}
	}
	return j
}
