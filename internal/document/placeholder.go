package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/omniconv/omniconv/internal/models"
)

// blockedPair describes a source/target combination that is never attempted
// because the conversion suite handles it unreliably.
type blockedPair struct {
	From   string
	To     string
	Reason string
}

var blockedConversions = []blockedPair{
	{From: ".pdf", To: ".pptx", Reason: "PDF to PowerPoint conversion is not supported reliably"},
	{From: ".pdf", To: ".xlsx", Reason: "PDF to Excel conversion is not reliable"},
	{From: ".pptx", To: ".xlsx", Reason: "PowerPoint to Excel conversion may not preserve formatting"},
	{From: ".xlsx", To: ".pptx", Reason: "Excel to PowerPoint conversion may not work as expected"},
}

func findBlockedPair(sourceExt, targetExt string) *blockedPair {
	for i := range blockedConversions {
		if blockedConversions[i].From == sourceExt && blockedConversions[i].To == targetExt {
			return &blockedConversions[i]
		}
	}
	return nil
}

// blockedPlaceholder is the artifact substituted for a blocked conversion
// pair. The content names the pair explicitly so the user knows nothing was
// attempted.
func blockedPlaceholder(file models.UploadedFile, pair *blockedPair) []byte {
	var b strings.Builder
	b.WriteString("Conversion Not Supported\n")
	b.WriteString("=======================\n\n")
	fmt.Fprintf(&b, "Original File: %s\n", file.OriginalName)
	fmt.Fprintf(&b, "Requested Conversion: %s -> %s\n\n", strings.ToUpper(strings.TrimPrefix(pair.From, ".")), strings.ToUpper(strings.TrimPrefix(pair.To, ".")))
	b.WriteString(pair.Reason + "\n\n")
	b.WriteString("Alternative suggestions:\n")
	b.WriteString("- For PDF files: convert to DOCX or TXT instead\n")
	b.WriteString("- For presentations: keep as PPTX or convert to PDF\n")
	b.WriteString("- For spreadsheets: keep as XLSX or convert to PDF\n\n")
	b.WriteString("Reliable conversion paths: DOCX <-> PDF <-> TXT, XLSX -> PDF, PPTX -> PDF\n")
	return []byte(b.String())
}

// failurePlaceholder describes a conversion the suite attempted and failed,
// so the batch can still succeed with a degraded artifact.
func failurePlaceholder(file models.UploadedFile, sourceExt, targetExt string, cause error) []byte {
	var b strings.Builder
	b.WriteString("Conversion Failed\n")
	b.WriteString("================\n\n")
	fmt.Fprintf(&b, "Original File: %s\n", file.OriginalName)
	fmt.Fprintf(&b, "Attempted Conversion: %s -> %s\n", strings.ToUpper(strings.TrimPrefix(sourceExt, ".")), strings.ToUpper(strings.TrimPrefix(targetExt, ".")))
	fmt.Fprintf(&b, "Error: %v\n\n", cause)
	b.WriteString("Common causes:\n")
	b.WriteString("1. Unsupported file format combination\n")
	b.WriteString("2. Corrupted or password-protected source file\n")
	b.WriteString("3. File complexity exceeds conversion capabilities\n\n")
	b.WriteString("Suggested alternatives:\n")
	b.WriteString("1. Try converting to PDF format instead\n")
	b.WriteString("2. Check that the source file opens in its native application\n")
	b.WriteString("3. Remove password protection if present\n\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", time.Now().UTC().Format(time.RFC3339))
	return []byte(b.String())
}

// imageInfoPlaceholder stands in for image-to-document targets that cannot
// embed images (xlsx, odt, txt). Not a real conversion by design.
func imageInfoPlaceholder(file models.UploadedFile) []byte {
	var b strings.Builder
	b.WriteString("Image Document Conversion\n")
	b.WriteString("==========================\n\n")
	fmt.Fprintf(&b, "Original File: %s\n", file.OriginalName)
	fmt.Fprintf(&b, "File Type: %s\n", file.MimeType)
	fmt.Fprintf(&b, "File Size: %d KB\n", file.Size/1024)
	fmt.Fprintf(&b, "Conversion Date: %s\n\n", time.Now().UTC().Format(time.RFC3339))
	b.WriteString("Note: this document was created from an image file.\n")
	b.WriteString("For full image embedding, use DOCX conversion.\n")
	return []byte(b.String())
}
