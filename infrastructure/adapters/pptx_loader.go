package adapters

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path"
	"strings"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/domain"
)

const presentationPartName = "ppt/presentation.xml"

// pptxRelationships mirrors the OOXML relationship part
// (ppt/_rels/presentation.xml.rels and per-slide rels).
type pptxRelationships struct {
	Relationships []pptxRelationship `xml:"Relationship"`
}

type pptxRelationship struct {
	Id     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type pptxPresentation struct {
	SlideIdList struct {
		SlideIds []struct {
			// sldId carries both its own numeric id and the r:id pointing at
			// the relationship entry; only the latter resolves the part.
			RelId string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldId"`
	} `xml:"sldIdLst"`
}

type pptxLoader struct {
	logger outbound.LoggerPort
}

func NewPptxLoader(logger outbound.LoggerPort) outbound.DeckLoaderPort {
	return &pptxLoader{
		logger: logger,
	}
}

// Load opens a .pptx container (a zip of XML parts) and extracts the ordered
// slides with their text, title, and speaker notes.
func (l *pptxLoader) Load(filePath string) (*domain.Presentation, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		l.logger.ErrorWithFields(err, "Failed to open presentation container", map[string]interface{}{
			"path": filePath,
		})
		return nil, &domain.LoadError{Path: filePath, Reason: "not a valid presentation container", Err: err}
	}
	defer func(reader *zip.ReadCloser) {
		err := reader.Close()
		if err != nil {
			l.logger.Error(err, "Failed to close presentation container")
		}
	}(reader)

	parts := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		parts[f.Name] = f
	}

	slideParts, err := l.orderedSlideParts(parts)
	if err != nil {
		return nil, &domain.LoadError{Path: filePath, Reason: err.Error(), Err: err}
	}
	if len(slideParts) == 0 {
		return nil, &domain.LoadError{Path: filePath, Reason: "presentation contains zero slides"}
	}

	slides := make([]domain.Slide, 0, len(slideParts))
	for i, partName := range slideParts {
		title, body, err := l.extractSlideText(parts, partName)
		if err != nil {
			return nil, &domain.LoadError{Path: filePath, Reason: "failed to parse slide " + partName, Err: err}
		}
		notes, err := l.extractSlideNotes(parts, partName)
		if err != nil {
			return nil, &domain.LoadError{Path: filePath, Reason: "failed to parse notes for " + partName, Err: err}
		}
		slides = append(slides, domain.Slide{
			Index: i,
			Title: title,
			Text:  body,
			Notes: notes,
		})
	}

	return &domain.Presentation{Slides: slides}, nil
}

// orderedSlideParts resolves the slide order declared in presentation.xml
// through the relationship part, so slides come back in authored order rather
// than zip order.
func (l *pptxLoader) orderedSlideParts(parts map[string]*zip.File) ([]string, error) {
	var presentation pptxPresentation
	if err := l.decodePart(parts, presentationPartName, &presentation); err != nil {
		return nil, err
	}

	var rels pptxRelationships
	if err := l.decodePart(parts, "ppt/_rels/presentation.xml.rels", &rels); err != nil {
		return nil, err
	}

	targetByRelId := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		targetByRelId[rel.Id] = rel.Target
	}

	slideParts := make([]string, 0, len(presentation.SlideIdList.SlideIds))
	for _, slideId := range presentation.SlideIdList.SlideIds {
		target, ok := targetByRelId[slideId.RelId]
		if !ok {
			continue
		}
		slideParts = append(slideParts, path.Join("ppt", target))
	}

	return slideParts, nil
}

// extractSlideText walks the slide XML token stream collecting a:t runs.
// Runs inside a title placeholder shape become the title; everything else is
// body text, with paragraph boundaries turned into spaces.
func (l *pptxLoader) extractSlideText(parts map[string]*zip.File, partName string) (title string, body string, err error) {
	part, ok := parts[partName]
	if !ok {
		return "", "", &missingPartError{Part: partName}
	}

	rc, err := part.Open()
	if err != nil {
		return "", "", err
	}
	defer func(rc io.ReadCloser) {
		closeErr := rc.Close()
		if closeErr != nil {
			l.logger.Error(closeErr, "Failed to close slide part")
		}
	}(rc)

	decoder := xml.NewDecoder(rc)

	var titleParts, bodyParts []string
	inShape := false
	shapeIsTitle := false
	var shapeText strings.Builder

	flushShape := func() {
		text := strings.TrimSpace(shapeText.String())
		shapeText.Reset()
		if text == "" {
			return
		}
		if shapeIsTitle && title == "" {
			titleParts = append(titleParts, text)
		} else {
			bodyParts = append(bodyParts, text)
		}
	}

	for {
		tok, tokErr := decoder.Token()
		if tokErr == io.EOF {
			break
		}
		if tokErr != nil {
			return "", "", tokErr
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				inShape = true
				shapeIsTitle = false
			case "ph":
				for _, attr := range t.Attr {
					if attr.Name.Local == "type" && (attr.Value == "title" || attr.Value == "ctrTitle") {
						shapeIsTitle = true
					}
				}
			case "t":
				var run string
				if err := decoder.DecodeElement(&run, &t); err != nil {
					return "", "", err
				}
				shapeText.WriteString(run)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inShape {
					shapeText.WriteString(" ")
				}
			case "sp":
				flushShape()
				inShape = false
			}
		}
	}
	flushShape()

	if len(titleParts) > 0 {
		title = strings.Join(titleParts, " ")
	}
	return title, strings.TrimSpace(strings.Join(bodyParts, " ")), nil
}

// extractSlideNotes follows the slide's relationship part to its notes slide,
// when one exists. Slides without notes are common and not an error.
func (l *pptxLoader) extractSlideNotes(parts map[string]*zip.File, slidePartName string) (string, error) {
	relsPartName := path.Join("ppt/slides/_rels", path.Base(slidePartName)+".rels")
	if _, ok := parts[relsPartName]; !ok {
		return "", nil
	}

	var rels pptxRelationships
	if err := l.decodePart(parts, relsPartName, &rels); err != nil {
		return "", err
	}

	for _, rel := range rels.Relationships {
		if !strings.HasSuffix(rel.Type, "/notesSlide") {
			continue
		}
		notesPartName := path.Join("ppt/slides", rel.Target)
		if _, ok := parts[notesPartName]; !ok {
			return "", nil
		}
		_, notesText, err := l.extractSlideText(parts, notesPartName)
		if err != nil {
			return "", err
		}
		return notesText, nil
	}

	return "", nil
}

func (l *pptxLoader) decodePart(parts map[string]*zip.File, partName string, v interface{}) error {
	part, ok := parts[partName]
	if !ok {
		return &missingPartError{Part: partName}
	}

	rc, err := part.Open()
	if err != nil {
		return err
	}
	defer func(rc io.ReadCloser) {
		closeErr := rc.Close()
		if closeErr != nil {
			l.logger.Error(closeErr, "Failed to close container part")
		}
	}(rc)

	return xml.NewDecoder(rc).Decode(v)
}

type missingPartError struct {
	Part string
}

func (e *missingPartError) Error() string {
	return "missing container part " + e.Part
}
