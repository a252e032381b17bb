package infrastructure

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"

	"hiring-platform/domain"
)

// maxResumeText bounds the stored preview.
const maxResumeText = 64 << 10

// ResumeReader extracts a plain-text preview from an uploaded resume.
type ResumeReader struct {
	logger *zap.Logger
}

func NewResumeReader(logger *zap.Logger) *ResumeReader {
	return &ResumeReader{logger: logger}
}

func (r *ResumeReader) ExtractText(data []byte, fileType domain.ResumeFileType) (string, error) {
	var (
		text string
		err  error
	)
	switch fileType {
	case domain.ResumeTXT:
		text = string(data)
	case domain.ResumePDF:
		text, err = r.extractTextFromPDF(data)
	case domain.ResumeDOCX:
		text, err = extractTextFromDOCX(data)
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", domain.ErrValidation, fileType)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if len(text) > maxResumeText {
		text = text[:maxResumeText]
	}
	return text, nil
}

func (r *ResumeReader) extractTextFromPDF(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to get page count: %w", err)
	}
	if numPages == 0 {
		return "", errors.New("PDF has no pages")
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			r.logger.Debug("skipping unreadable PDF page", zap.Int("page", i), zap.Error(err))
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			r.logger.Debug("skipping PDF page without extractor", zap.Int("page", i), zap.Error(err))
			continue
		}
		pageText, err := ex.ExtractText()
		if err != nil {
			r.logger.Debug("failed to extract PDF page text", zap.Int("page", i), zap.Error(err))
			continue
		}
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n\n")
		}
	}

	if sb.Len() == 0 {
		return "", errors.New("no text could be extracted from any page of the PDF")
	}
	return sb.String(), nil
}

func extractTextFromDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX: %w", err)
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent())
}

// documentXMLText collects the w:t runs of a WordprocessingML body, one line
// per paragraph.
func documentXMLText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	var (
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
