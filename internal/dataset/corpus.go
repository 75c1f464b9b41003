// Package dataset builds and serializes labeled OCR training corpora.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one labeled training example: the OCR text of a sample image
type Row struct {
	Filename string
	Label    string
	Text     string
}

// Corpus is an ordered sequence of labeled samples. Duplicate labels are
// expected; rows with empty text are kept here and excluded at training
// load time.
type Corpus []Row

// Labels returns the distinct labels in first-appearance order
func (c Corpus) Labels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, row := range c {
		if !seen[row.Label] {
			seen[row.Label] = true
			labels = append(labels, row.Label)
		}
	}
	return labels
}

// WriteCSV serializes the corpus as filename,label,text rows with a header
func WriteCSV(w io.Writer, corpus Corpus) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"filename", "label", "text"}); err != nil {
		return err
	}
	for _, row := range corpus {
		if err := cw.Write([]string{row.Filename, row.Label, row.Text}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a corpus previously written by WriteCSV
func ReadCSV(r io.Reader) (Corpus, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus header: %w", err)
	}
	if strings.ToLower(header[0]) != "filename" {
		return nil, fmt.Errorf("unexpected corpus header: %v", header)
	}

	var corpus Corpus
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus row: %w", err)
		}
		corpus = append(corpus, Row{
			Filename: record[0],
			Label:    record[1],
			Text:     record[2],
		})
	}
	return corpus, nil
}
