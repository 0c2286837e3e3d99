package extract

// ExtractionRecord is one raw document produced by the upstream field
// extraction process. Every scalar below llmData arrives wrapped in a value
// container ({"value": ..., "confidence": ...}); sections themselves are
// containers wrapping objects of further containers.
type ExtractionRecord struct {
	ID            string        `json:"_id"`
	Metadata      Metadata      `json:"metadata"`
	ExtractedData ExtractedData `json:"extractedData"`
}

// Metadata carries the secondary document identifier.
type Metadata struct {
	DocID string `json:"docId"`
}

// ExtractedData wraps the named extraction sections (vendor, customer,
// invoice, summary, lineItems, payment). LLMData stays untyped so a record
// with a malformed payload decodes fine and gets skipped, instead of failing
// the whole input array.
type ExtractedData struct {
	LLMData any `json:"llmData"`
}

// Payload returns the llmData section map, or nil when the record has none
// or it is not an object.
func (r *ExtractionRecord) Payload() map[string]any {
	m, ok := r.ExtractedData.LLMData.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	return m
}
