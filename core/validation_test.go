package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateDocument(t *testing.T) {
	stamped := DefaultMetadata(time.Now())

	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name:    "valid document",
			doc:     &Document{Content: "Hello world", Metadata: stamped},
			wantErr: nil,
		},
		{
			name:    "valid document without vector",
			doc:     &Document{Content: "Hello world", Metadata: stamped, Vector: nil},
			wantErr: nil,
		},
		{
			name:    "valid document with empty source",
			doc:     &Document{Content: "Hello", Metadata: Metadata{CreatedAt: time.Now()}},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "empty content",
			doc:     &Document{Content: "", Metadata: stamped},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "unstamped metadata",
			doc:     &Document{Content: "Hello", Metadata: Metadata{Source: "x"}},
			wantErr: ErrMissingTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("ValidateDocument() error = %v, want wrapped %v", err, ErrInvalidDocument)
			}
		})
	}
}
