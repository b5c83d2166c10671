package timesheet

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeDocuments reads raw documents from r. It accepts a JSON array of
// objects, an object wrapping them under "documents", a single object, or
// newline-delimited objects. Numbers are kept as json.Number.
func DecodeDocuments(r io.Reader) ([]Document, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	if first == '[' {
		var docs []Document
		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("decoding document array: %w", err)
		}
		return docs, nil
	}

	var docs []Document
	for i := 0; ; i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding document %d: %w", i+1, err)
		}

		inner := json.NewDecoder(bytes.NewReader(raw))
		inner.UseNumber()
		var doc Document
		if err := inner.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding document %d: %w", i+1, err)
		}

		if wrapped, ok := doc["documents"].([]any); ok && len(doc) == 1 {
			for _, w := range wrapped {
				if d, ok := asDocument(w); ok {
					docs = append(docs, d)
				}
			}
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
