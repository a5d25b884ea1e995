// Package render turns an extracted slide model into pixels: it lays out
// wrapped text against real font metrics and composes background, shapes,
// images, and text onto a per-slide canvas.
package render

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// maxFontFileSize limits the size of individual font files loaded into memory.
const maxFontFileSize = 20 << 20 // 20 MB

// maxFontScanDepth limits recursive traversal when scanning font directories.
const maxFontScanDepth = 3

type faceKey struct {
	family string
	size   float64
	bold   bool
	italic bool
}

// FontCache discovers TrueType/OpenType fonts from system and caller
// directories and caches parsed fonts and rendered faces. A single cache
// may be shared across conversions; all methods are safe for concurrent use.
type FontCache struct {
	mu           sync.RWMutex
	dirs         []string
	fonts        map[string]*sfnt.Font // lowercase family name -> parsed font
	faces        map[faceKey]font.Face // HintingFull, for drawing
	measureFaces map[faceKey]font.Face // HintingNone, for layout measurement
	scanned      bool
}

// NewFontCache creates a cache that searches the given directories in
// addition to the OS default font directories.
func NewFontCache(extraDirs ...string) *FontCache {
	return &FontCache{
		dirs:         append(systemFontDirs(), extraDirs...),
		fonts:        make(map[string]*sfnt.Font),
		faces:        make(map[faceKey]font.Face),
		measureFaces: make(map[faceKey]font.Face),
	}
}

// Face returns a drawing face for the family at sizePx pixels, or nil when
// no matching font is installed. Face sizes are requested at 72 DPI so one
// point equals one pixel; callers pass pixel sizes directly.
func (fc *FontCache) Face(family string, sizePx float64, bold, italic bool) font.Face {
	return fc.face(family, sizePx, bold, italic, font.HintingFull, fc.faces)
}

// MeasureFace returns an unhinted face for text measurement. Unhinted
// glyph advances track the authoring application's layout more closely,
// so wrap points land where the presentation intended.
func (fc *FontCache) MeasureFace(family string, sizePx float64, bold, italic bool) font.Face {
	return fc.face(family, sizePx, bold, italic, font.HintingNone, fc.measureFaces)
}

func (fc *FontCache) face(family string, sizePx float64, bold, italic bool, hinting font.Hinting, cache map[faceKey]font.Face) font.Face {
	fc.ensureScanned()

	key := faceKey{family: strings.ToLower(family), size: sizePx, bold: bold, italic: italic}
	fc.mu.RLock()
	if f, ok := cache[key]; ok {
		fc.mu.RUnlock()
		return f
	}
	fc.mu.RUnlock()

	parsed := fc.findFont(family, bold, italic)
	if parsed == nil {
		return nil
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: hinting,
	})
	if err != nil {
		return nil
	}

	fc.mu.Lock()
	cache[key] = face
	fc.mu.Unlock()
	return face
}

// styleSuffixes are the filename/family suffixes distinguishing style
// variants (e.g. "arialbd", "DejaVuSans-Bold").
func styleSuffixes(bold, italic bool) []string {
	switch {
	case bold && italic:
		return []string{" bold italic", "-bolditalic", "bi", "z"}
	case bold:
		return []string{" bold", "-bold", "bd", "b"}
	case italic:
		return []string{" italic", "-italic", "i"}
	default:
		return nil
	}
}

func (fc *FontCache) findFont(family string, bold, italic bool) *sfnt.Font {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	lower := strings.ToLower(family)
	for _, suffix := range styleSuffixes(bold, italic) {
		if f, ok := fc.fonts[lower+suffix]; ok {
			return f
		}
	}
	if f, ok := fc.fonts[lower]; ok {
		return f
	}
	// Generic fallbacks keep text visible when the deck's font is absent.
	for _, fallback := range []string{"arial", "helvetica", "dejavu sans", "liberation sans", "noto sans"} {
		if fallback == lower {
			continue
		}
		if f, ok := fc.fonts[fallback]; ok {
			return f
		}
	}
	return nil
}

// RegisterFontData registers a TrueType/OpenType font from raw bytes under
// the given family name, in addition to its internal family name.
func (fc *FontCache) RegisterFontData(family string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return err
	}
	fc.mu.Lock()
	fc.fonts[strings.ToLower(family)] = f
	fc.registerByFamilyName(f)
	fc.mu.Unlock()
	return nil
}

func (fc *FontCache) ensureScanned() {
	fc.mu.RLock()
	scanned := fc.scanned
	fc.mu.RUnlock()
	if scanned {
		return
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.scanned {
		return
	}
	fc.scanned = true
	for _, dir := range fc.dirs {
		fc.scanDir(dir, 0)
	}
}

func (fc *FontCache) scanDir(dir string, depth int) {
	if depth > maxFontScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			fc.scanDir(filepath.Join(dir, entry.Name()), depth+1)
			continue
		}
		lower := strings.ToLower(entry.Name())
		isCollection := strings.HasSuffix(lower, ".ttc") || strings.HasSuffix(lower, ".otc")
		isSingle := strings.HasSuffix(lower, ".ttf") || strings.HasSuffix(lower, ".otf")
		if !isCollection && !isSingle {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() > maxFontFileSize {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		base := strings.TrimSuffix(lower, filepath.Ext(lower))
		if isCollection {
			fc.loadCollection(data, base)
		} else {
			fc.loadSingle(data, base)
		}
	}
}

func (fc *FontCache) loadSingle(data []byte, baseName string) {
	f, err := opentype.Parse(data)
	if err != nil {
		return
	}
	fc.fonts[baseName] = f
	fc.registerByFamilyName(f)
}

func (fc *FontCache) loadCollection(data []byte, baseName string) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return
	}
	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			continue
		}
		if i == 0 {
			fc.fonts[baseName] = f
		}
		fc.registerByFamilyName(f)
	}
}

func (fc *FontCache) registerByFamilyName(f *sfnt.Font) {
	if family, err := f.Name(nil, sfnt.NameIDFamily); err == nil && family != "" {
		fc.fonts[strings.ToLower(family)] = f
	}
	if full, err := f.Name(nil, sfnt.NameIDFull); err == nil && full != "" {
		fc.fonts[strings.ToLower(full)] = f
	}
}

func systemFontDirs() []string {
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs := []string{filepath.Join(windir, "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home, _ := os.UserHomeDir(); home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home, _ := os.UserHomeDir(); home != "" {
			dirs = append(dirs,
				filepath.Join(home, ".local", "share", "fonts"),
				filepath.Join(home, ".fonts"))
		}
		return dirs
	}
}
