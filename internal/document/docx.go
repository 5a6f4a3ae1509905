package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Fixed placement for embedded images, in pixels. OOXML measures drawing
// extents in EMUs at 9525 EMU per pixel.
const (
	embedWidthPx   = 500
	embedHeightPx  = 400
	emusPerPixel   = 9525
	embedWidthEMU  = embedWidthPx * emusPerPixel
	embedHeightEMU = embedHeightPx * emusPerPixel
)

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// buildImageDocx writes a minimal WordprocessingML package embedding the raw
// image bytes in a single centered paragraph at a fixed 500x400 placement.
func buildImageDocx(imageName string, imageData []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(imageName))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		// LibreOffice and Word sniff the payload; png is the safest default label.
		ext = ".png"
		contentType = "image/png"
	}
	mediaName := "image1" + ext

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML(ext, contentType))},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML(mediaName))},
		{"word/media/" + mediaName, imageData},
		{"word/document.xml", []byte(documentXML(imageName))},
	}

	for _, part := range parts {
		entry, err := w.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create docx part %s: %w", part.name, err)
		}
		if _, err := entry.Write(part.data); err != nil {
			return nil, fmt.Errorf("failed to write docx part %s: %w", part.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize docx package: %w", err)
	}
	return buf.Bytes(), nil
}

func contentTypesXML(imageExt, imageContentType string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="` + strings.TrimPrefix(imageExt, ".") + `" ContentType="` + imageContentType + `"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`
}

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

func documentRelsXML(mediaName string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rIdImg1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/` + mediaName + `"/>
</Relationships>`
}

func documentXML(imageName string) string {
	name := xmlEscape(imageName)
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
 xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<w:body>
<w:p>
<w:pPr><w:jc w:val="center"/></w:pPr>
<w:r>
<w:drawing>
<wp:inline distT="0" distB="0" distL="0" distR="0">
<wp:extent cx="%d" cy="%d"/>
<wp:docPr id="1" name="%s"/>
<a:graphic>
<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">
<pic:pic>
<pic:nvPicPr>
<pic:cNvPr id="1" name="%s"/>
<pic:cNvPicPr/>
</pic:nvPicPr>
<pic:blipFill>
<a:blip r:embed="rIdImg1"/>
<a:stretch><a:fillRect/></a:stretch>
</pic:blipFill>
<pic:spPr>
<a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>
<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>
</pic:spPr>
</pic:pic>
</a:graphicData>
</a:graphic>
</wp:inline>
</w:drawing>
</w:r>
</w:p>
<w:sectPr/>
</w:body>
</w:document>`, embedWidthEMU, embedHeightEMU, name, name, embedWidthEMU, embedHeightEMU)
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
