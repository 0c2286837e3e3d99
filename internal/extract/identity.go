package extract

// External identifiers are scoped to the source document on purpose: the
// requirement is grouping line items and payments under one document's
// invoice, not deduplicating vendors across documents. Cross-document vendor
// matching would be a separate feature with its own matching policy.

// RecordID resolves the record's unique identifier: the primary _id, falling
// back to metadata.docId. ok is false when neither is present.
func RecordID(r *ExtractionRecord) (id string, ok bool) {
	if r.ID != "" {
		return r.ID, true
	}
	if r.Metadata.DocID != "" {
		return r.Metadata.DocID, true
	}
	return "", false
}

// VendorExternalID derives the storage key for a record's vendor row.
func VendorExternalID(recordID string) string {
	return "vendor-" + recordID
}

// CustomerExternalID derives the storage key for a record's customer row.
func CustomerExternalID(recordID string) string {
	return "customer-" + recordID
}
