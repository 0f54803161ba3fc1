package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Well-known part names and relationship types.
const (
	DocumentPart     = "word/document.xml"
	contentTypesPart = "[Content_Types].xml"

	imageRelType  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// firstDrawingID keeps generated drawing ids clear of the small ids Word
// assigns to pictures already in a template.
const firstDrawingID = 1000

// MaxPartSize caps a single decompressed part (64MB).
var MaxPartSize int64 = 64 << 20

// Sentinel errors for package operations.
var (
	ErrNotDocx       = errors.New("not a DOCX package")
	ErrPartTooLarge  = errors.New("package part exceeds maximum size")
	ErrPartNotFound  = errors.New("package part not found")
	ErrMalformedPart = errors.New("malformed XML part")
)

// Package is an opened DOCX archive. Parts are kept as raw bytes until
// requested as XML; parsed parts are serialized back by Bytes.
// A Package is not safe for concurrent use.
type Package struct {
	names []string
	parts map[string][]byte
	docs  map[string]*etree.Document

	drawingID int
}

// Open reads a DOCX file from disk.
func Open(filePath string) (*Package, error) {
	data, err := os.ReadFile(filePath) // #nosec G304 -- template path is caller-provided
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	pkg, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return pkg, nil
}

// Read parses a DOCX archive held in memory.
func Read(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	pkg := &Package{
		parts: make(map[string][]byte, len(zr.File)),
		docs:  make(map[string]*etree.Document),
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		content, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		pkg.names = append(pkg.names, f.Name)
		pkg.parts[f.Name] = content
	}

	if _, ok := pkg.parts[DocumentPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNotDocx, DocumentPart)
	}
	return pkg, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	if int64(f.UncompressedSize64) > MaxPartSize {
		return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %s: %w", f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading part %s: %w", f.Name, err)
	}
	if int64(len(content)) > MaxPartSize {
		return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, f.Name)
	}
	return content, nil
}

// Has reports whether the package contains a part.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// Put adds or replaces a raw part.
func (p *Package) Put(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = data
	delete(p.docs, name)
}

// XML returns the parsed tree of an XML part. Changes to the tree are
// written back by Bytes.
func (p *Package) XML(name string) (*etree.Document, error) {
	if doc, ok := p.docs[name]; ok {
		return doc, nil
	}
	data, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPart, name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: %s: no root element", ErrMalformedPart, name)
	}
	p.docs[name] = doc
	return doc, nil
}

// ContentParts lists the parts holding template text: the main document,
// then headers and footers in archive order.
func (p *Package) ContentParts() []string {
	parts := []string{DocumentPart}
	for _, name := range p.names {
		if path.Dir(name) != "word" {
			continue
		}
		base := path.Base(name)
		if (strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")) && strings.HasSuffix(base, ".xml") {
			parts = append(parts, name)
		}
	}
	return parts
}

// Bytes serializes the package, writing parsed parts back first.
func (p *Package) Bytes() ([]byte, error) {
	for name, doc := range p.docs {
		data, err := doc.WriteToBytes()
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}
		p.parts[name] = data
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("writing part %s: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			return nil, fmt.Errorf("writing part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// relsPartName returns the relationships part of a part:
// word/document.xml -> word/_rels/document.xml.rels.
func relsPartName(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// AddRelationship registers a relationship from part to target and
// returns its new id (rIdN, one past the highest existing id).
func (p *Package) AddRelationship(part, relType, target string) (string, error) {
	name := relsPartName(part)
	if !p.Has(name) {
		p.Put(name, []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+
			`<Relationships xmlns="`+relsNamespace+`"></Relationships>`))
	}
	doc, err := p.XML(name)
	if err != nil {
		return "", err
	}
	root := doc.Root()

	maxID := 0
	for _, rel := range root.SelectElements("Relationship") {
		id := rel.SelectAttrValue("Id", "")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}

	id := "rId" + strconv.Itoa(maxID+1)
	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", target)
	return id, nil
}

// EnsureContentType declares a default content type for a file extension.
func (p *Package) EnsureContentType(ext, contentType string) error {
	doc, err := p.XML(contentTypesPart)
	if err != nil {
		return err
	}
	root := doc.Root()
	for _, d := range root.SelectElements("Default") {
		if strings.EqualFold(d.SelectAttrValue("Extension", ""), ext) {
			return nil
		}
	}
	def := etree.NewElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", contentType)
	root.InsertChildAt(0, def)
	return nil
}

// mediaName returns an unused part name under word/media/.
// nextDrawingID returns a wp:docPr id unique across every part of p.
func (p *Package) nextDrawingID() int {
	if p.drawingID < firstDrawingID {
		p.drawingID = firstDrawingID
	}
	p.drawingID++
	return p.drawingID
}

func (p *Package) mediaName(ext string) string {
	for i := len(p.names) + 1; ; i++ {
		name := fmt.Sprintf("word/media/docfill%d.%s", i, ext)
		if !p.Has(name) {
			return name
		}
	}
}
