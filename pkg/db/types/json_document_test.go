package dbtypes

import (
	"encoding/json"
	"testing"
)

func TestJSONDocumentScanAcceptsTextAndBytes(t *testing.T) {
	var fromText JSONDocument
	if err := fromText.Scan(`{"a":1}`); err != nil {
		t.Fatalf("scan text: %v", err)
	}
	var fromBytes JSONDocument
	if err := fromBytes.Scan([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if string(fromText) != string(fromBytes) {
		t.Fatalf("expected equal documents, got %s vs %s", fromText, fromBytes)
	}

	var empty JSONDocument
	if err := empty.Scan(nil); err != nil || empty != nil {
		t.Fatalf("expected nil document for NULL, got %v (%v)", empty, err)
	}
	if err := empty.Scan(`{not json`); err == nil {
		t.Fatal("expected invalid json to fail")
	}
}

func TestJSONDocumentValueAndMarshal(t *testing.T) {
	doc, err := NewJSONDocument(map[string]any{"objectId": 42})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	value, err := doc.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value != `{"objectId":42}` {
		t.Fatalf("unexpected value %v", value)
	}

	wrapped, err := json.Marshal(struct {
		Data JSONDocument `json:"data"`
	}{Data: doc})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(wrapped) != `{"data":{"objectId":42}}` {
		t.Fatalf("document should embed verbatim, got %s", wrapped)
	}

	var nilDoc JSONDocument
	if v, _ := nilDoc.Value(); v != nil {
		t.Fatalf("empty document should be NULL, got %v", v)
	}
}
