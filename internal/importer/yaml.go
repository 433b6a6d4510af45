package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/okian/lanes/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// RecordFile is the YAML document layout for record files.
type RecordFile struct {
	Records []model.RawRecord `yaml:"records"`
}

// ReadYAML reads every document of a YAML record file. Multiple documents
// separated by "---" are concatenated.
func ReadYAML(r io.Reader) ([]model.RawRecord, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out []model.RawRecord
	for {
		var f RecordFile
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadYAML, err)
		}
		out = append(out, f.Records...)
	}
}

// WriteYAML writes records as one YAML record file.
func WriteYAML(w io.Writer, records []model.RawRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(RecordFile{Records: records}); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}
