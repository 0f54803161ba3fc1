package docx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// EMU conversions.
const (
	emuPerTwip  = 635
	emuPerPixel = 9525
	emuPerInch  = 914400

	defaultImageWidth = 6 * emuPerInch
)

var (
	errImageMissing     = errors.New("image file not found")
	errImageUnsupported = errors.New("unsupported image format")
)

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}

// embeddedImage is a picture already stored in the package.
type embeddedImage struct {
	relID  string
	name   string
	width  int64 // natural size in EMU
	height int64
}

// imageEmbedder stores pictures in the package and builds the runs that
// show them. Each file is stored once per part.
type imageEmbedder struct {
	pkg    *Package
	part   string
	doc    *etree.Document
	cache  map[string]embeddedImage
}

func newImageEmbedder(pkg *Package, part string, doc *etree.Document) *imageEmbedder {
	return &imageEmbedder{
		pkg:   pkg,
		part:  part,
		doc:   doc,
		cache: make(map[string]embeddedImage),
	}
}

// drawingRun returns a run holding file as an inline picture no wider than
// maxWidth EMU, keeping the aspect ratio.
func (e *imageEmbedder) drawingRun(file string, maxWidth int64) (*etree.Element, error) {
	img, err := e.embed(file)
	if err != nil {
		return nil, err
	}

	cx, cy := img.width, img.height
	if cx > maxWidth && cx > 0 {
		cy = cy * maxWidth / cx
		cx = maxWidth
	}

	ensureNamespace(e.doc, "wp", nsWP)
	ensureNamespace(e.doc, "r", nsR)

	frag := etree.NewDocument()
	if err := frag.ReadFromString(drawingXML(img.relID, img.name, e.pkg.nextDrawingID(), cx, cy)); err != nil {
		return nil, fmt.Errorf("building drawing: %w", err)
	}
	run := frag.Root()
	frag.RemoveChild(run)
	return run, nil
}

func (e *imageEmbedder) embed(file string) (embeddedImage, error) {
	if img, ok := e.cache[file]; ok {
		return img, nil
	}

	data, err := os.ReadFile(file) // #nosec G304 -- image paths come from the caller's context
	if errors.Is(err, fs.ErrNotExist) {
		return embeddedImage{}, errImageMissing
	}
	if err != nil {
		return embeddedImage{}, fmt.Errorf("reading image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return embeddedImage{}, fmt.Errorf("%w: %v", errImageUnsupported, err)
	}
	ctype, ok := imageContentTypes[format]
	if !ok {
		return embeddedImage{}, fmt.Errorf("%w: %s", errImageUnsupported, format)
	}

	media := e.pkg.mediaName(format)
	e.pkg.Put(media, data)
	if err := e.pkg.EnsureContentType(format, ctype); err != nil {
		return embeddedImage{}, err
	}
	relID, err := e.pkg.AddRelationship(e.part, imageRelType, "media/"+path.Base(media))
	if err != nil {
		return embeddedImage{}, err
	}

	img := embeddedImage{
		relID:  relID,
		name:   path.Base(file),
		width:  int64(cfg.Width) * emuPerPixel,
		height: int64(cfg.Height) * emuPerPixel,
	}
	e.cache[file] = img
	return img, nil
}

// availableWidth returns the width, in EMU, that a picture placed in run
// may take: the enclosing cell width when the cell declares one in twips,
// else the text width of the last section, else six inches.
func availableWidth(run *etree.Element, doc *etree.Document) int64 {
	if tc := ancestor(run, "tc"); tc != nil {
		if w := collect(tc, "tcW", "tbl"); len(w) > 0 && w[0].SelectAttrValue("w:type", "dxa") == "dxa" {
			if n := twips(w[0], "w:w"); n > 0 {
				return n * emuPerTwip
			}
		}
	}

	sections := collect(doc.Root(), "sectPr")
	if len(sections) == 0 {
		return defaultImageWidth
	}
	sect := sections[len(sections)-1]
	pgSz := directChildren(sect, "pgSz")
	pgMar := directChildren(sect, "pgMar")
	if len(pgSz) == 0 {
		return defaultImageWidth
	}
	width := twips(pgSz[0], "w:w")
	if len(pgMar) > 0 {
		width -= twips(pgMar[0], "w:left") + twips(pgMar[0], "w:right")
	}
	if width <= 0 {
		return defaultImageWidth
	}
	return width * emuPerTwip
}

func twips(e *etree.Element, attr string) int64 {
	n, err := strconv.ParseInt(e.SelectAttrValue(attr, ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

func xmlAttr(s string) string { return attrEscaper.Replace(s) }

func drawingXML(relID, name string, id int, cx, cy int64) string {
	return fmt.Sprintf(`<w:r><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%[4]d" cy="%[5]d"/>`+
		`<wp:docPr id="%[3]d" name="Picture %[3]d" descr="%[2]s"/>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="0" name="%[2]s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[1]s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[4]d" cy="%[5]d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		relID, xmlAttr(name), id, cx, cy)
}
