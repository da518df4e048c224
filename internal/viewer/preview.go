package viewer

import (
	"fmt"
	"image"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tOgg1/lightbox/internal/models"
)

const (
	previewReadLimit = 256 * 1024
	defaultCacheSize = 64
)

var kindIcons = map[models.AttachmentKind]string{
	models.AttachmentKindImage:    "🖼",
	models.AttachmentKindVideo:    "🎬",
	models.AttachmentKindAudio:    "🎵",
	models.AttachmentKindDocument: "📄",
	models.AttachmentKindFile:     "📎",
}

// previewRenderer turns one attachment into a pane of styled terminal cells.
// Rendered panes are cached by source and geometry; scrolling through a
// conversation's attachments re-renders nothing.
type previewRenderer struct {
	theme Theme
	cache *lru.Cache[string, string]
}

func newPreviewRenderer(theme Theme, cacheSize int) *previewRenderer {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	// Only errors on a non-positive size, which is guarded above.
	cache, _ := lru.New[string, string](cacheSize)
	return &previewRenderer{theme: theme, cache: cache}
}

// Render returns the attachment's pane, exactly width x height cells.
func (r *previewRenderer) Render(att models.Attachment, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	key := fmt.Sprintf("%s|%s|%dx%d|%s", att.Source, att.Kind, width, height, r.theme.Name)
	if pane, ok := r.cache.Get(key); ok {
		return pane
	}

	var pane string
	switch att.Kind {
	case models.AttachmentKindImage:
		pane = r.renderImage(att, width, height)
	case models.AttachmentKindDocument:
		pane = r.renderDocument(att, width, height)
	default:
		pane = r.renderCard(att, width, height)
	}

	pane = padPane(pane, width, height)
	r.cache.Add(key, pane)
	return pane
}

// NotFoundPane renders the placeholder shown when the requested attachment
// is missing from the conversation.
func (r *previewRenderer) NotFoundPane(width, height int) string {
	body := r.theme.mutedStyle().Render("attachment not found")
	return padPane(lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body), width, height)
}

func (r *previewRenderer) renderImage(att models.Attachment, width, height int) string {
	path, ok := localPath(att.Source)
	if !ok {
		return r.renderCard(att, width, height)
	}
	f, err := os.Open(path)
	if err != nil {
		return r.renderCard(att, width, height)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return r.renderCard(att, width, height)
	}

	cells := halfBlocks(img, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, cells)
}

func (r *previewRenderer) renderDocument(att models.Attachment, width, height int) string {
	path, ok := localPath(att.Source)
	if !ok {
		return r.renderCard(att, width, height)
	}
	payload, err := readHead(path, previewReadLimit)
	if err != nil {
		return r.renderCard(att, width, height)
	}

	wrap := width - 2
	if wrap < 10 {
		wrap = 10
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return wordwrap.String(string(payload), wrap)
	}
	out, err := renderer.Render(string(payload))
	if err != nil {
		return wordwrap.String(string(payload), wrap)
	}
	return out
}

// renderCard shows a metadata card for anything without inline content:
// remote sources, video, audio, and unknown files.
func (r *previewRenderer) renderCard(att models.Attachment, width, height int) string {
	icon := kindIcons[att.Kind]
	if icon == "" {
		icon = kindIcons[models.AttachmentKindFile]
	}

	name := att.Name
	if name == "" {
		name = att.Source
	}

	lines := []string{
		r.theme.kindStyle(att.Kind).Render(icon + "  " + string(att.Kind)),
		lipgloss.NewStyle().Bold(true).Render(name),
	}
	if att.SizeBytes > 0 {
		lines = append(lines, r.theme.mutedStyle().Render(humanize.Bytes(uint64(att.SizeBytes))))
	}
	if att.Width > 0 && att.Height > 0 {
		lines = append(lines, r.theme.mutedStyle().Render(fmt.Sprintf("%d×%d", att.Width, att.Height)))
	}
	if att.DurationSeconds > 0 {
		lines = append(lines, r.theme.mutedStyle().Render(formatDuration(att.DurationSeconds)))
	}

	card := r.theme.cardBorder().Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// halfBlocks renders an image as ▀ cells, two pixels per character row.
func halfBlocks(img image.Image, maxCols, maxRows int) string {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return ""
	}

	cols := maxCols
	rows := srcH * cols / (srcW * 2)
	if rows > maxRows {
		rows = maxRows
		cols = srcW * rows * 2 / srcH
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	var out strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			topY := bounds.Min.Y + (row*2)*srcH/(rows*2)
			botY := bounds.Min.Y + (row*2+1)*srcH/(rows*2)
			x := bounds.Min.X + col*srcW/cols

			tr, tg, tb := rgb(img.At(x, topY))
			br, bg, bb := rgb(img.At(x, botY))
			fmt.Fprintf(&out, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", tr, tg, tb, br, bg, bb)
		}
		out.WriteString("\x1b[0m")
		if row < rows-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func rgb(c interface{ RGBA() (uint32, uint32, uint32, uint32) }) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

// localPath reports whether a source locator points at the local filesystem.
func localPath(source string) (string, bool) {
	switch {
	case strings.HasPrefix(source, "file://"):
		return strings.TrimPrefix(source, "file://"), true
	case strings.Contains(source, "://"):
		return "", false
	case source == "":
		return "", false
	default:
		return source, true
	}
}

func readHead(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size > limit {
		size = limit
	}
	buf := make([]byte, size)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
