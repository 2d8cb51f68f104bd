package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"path"

	json "github.com/goccy/go-json"
)

// Contents is the validated, parsed view of an incoming archive. Semantic
// checks beyond structure and version happen later, in the import resolver.
type Contents struct {
	HasStructure bool
	HasData      bool
	Survey       *SurveyDocument
	Responses    *ResponsesDocument
}

// Validate opens an untrusted archive and checks its container structure,
// document parseability and format version. It fails with an ImportError and
// never partially succeeds.
func Validate(data []byte) (*Contents, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, importErrorf("Invalid ZIP archive")
	}

	documents := map[string][]byte{}
	for _, f := range zr.File {
		name := path.Base(f.Name)
		if name != StructureFile && name != ResponsesFile {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, importErrorf("Invalid ZIP archive: cannot read %s", name)
		}
		content, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, importErrorf("Invalid ZIP archive: cannot read %s", name)
		}
		documents[name] = content
	}

	structure, hasStructure := documents[StructureFile]
	responses, hasData := documents[ResponsesFile]
	if !hasStructure && !hasData {
		return nil, importErrorf("archive must contain %s or %s", StructureFile, ResponsesFile)
	}

	contents := &Contents{HasStructure: hasStructure, HasData: hasData}
	if hasStructure {
		doc := &SurveyDocument{}
		if err := parseDocument(StructureFile, structure, doc); err != nil {
			return nil, err
		}
		contents.Survey = doc
	}
	if hasData {
		doc := &ResponsesDocument{}
		if err := parseDocument(ResponsesFile, responses, doc); err != nil {
			return nil, err
		}
		contents.Responses = doc
	}
	return contents, nil
}

// parseDocument gates on the format version before decoding the full
// document, so an unsupported version wins over any other content problem.
func parseDocument(name string, content []byte, doc any) error {
	var probe struct {
		Version *string `json:"version"`
	}
	if err := json.Unmarshal(content, &probe); err != nil {
		return importErrorf("Invalid %s", name)
	}
	version := ""
	if probe.Version != nil {
		version = *probe.Version
	}
	if !supportedVersions[version] {
		return importErrorf("Unsupported format version: %s", version)
	}
	if err := json.Unmarshal(content, doc); err != nil {
		return importErrorf("Invalid %s", name)
	}
	return nil
}
